// Package main provides an interactive probe client for the WebSocket API.
//
// It logs in over HTTP, opens a /ws connection, and forwards stdin lines
// as action envelopes. Useful for poking a running server by hand:
//
//	wsprobe -host localhost:8217 -username alice -password secret
//	> post hello world
//	> list
//	> {"action":"edit_post","data":{"session_id":"...","post_id":1,"new_content":"hi"}}
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8217", "API server host")
	username := flag.String("username", "probe", "Username to log in as")
	password := flag.String("password", "password", "Password to log in with")
	register := flag.Bool("register", false, "Register the user before logging in")
	flag.Parse()

	log.Printf("🔌 WebSocket probe → %s", *host)

	if *register {
		if err := registerUser(*host, *username, *password); err != nil {
			log.Printf("⚠️  Registration failed (continuing): %v", err)
		}
	}

	sessionID, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in, session %s...%s", sessionID[:4], sessionID[len(sessionID)-4:])

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("❌ Dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	// Print everything the server sends.
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				os.Exit(0)
			}
			fmt.Printf("<< %s\n", msg)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Commands: post <content>, list, edit <id> <content>, or a raw JSON envelope. Ctrl-D quits.")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := buildEnvelope(line, sessionID)
		if err != nil {
			fmt.Printf("!! %v\n", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(250 * time.Millisecond)
}

func buildEnvelope(line, sessionID string) ([]byte, error) {
	if strings.HasPrefix(line, "{") {
		return []byte(line), nil
	}

	fields := strings.SplitN(line, " ", 3)
	switch fields[0] {
	case "post":
		if len(fields) < 2 {
			return nil, fmt.Errorf("usage: post <content>")
		}
		content := strings.TrimPrefix(line, "post ")
		return envelope("create_post", map[string]any{
			"session_id": sessionID,
			"content":    content,
		})
	case "list":
		return envelope("get_posts", map[string]any{
			"session_id": sessionID,
		})
	case "edit":
		if len(fields) < 3 {
			return nil, fmt.Errorf("usage: edit <id> <content>")
		}
		var postID uint
		if _, err := fmt.Sscanf(fields[1], "%d", &postID); err != nil {
			return nil, fmt.Errorf("bad post id %q", fields[1])
		}
		return envelope("edit_post", map[string]any{
			"session_id":  sessionID,
			"post_id":     postID,
			"new_content": fields[2],
		})
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func envelope(action string, data map[string]any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"action": action,
		"data":   data,
	})
}

func registerUser(host, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(fmt.Sprintf("http://%s/register", host), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("register failed with status %d", resp.StatusCode)
	}
	return nil
}

func login(host, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(fmt.Sprintf("http://%s/login", host), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.SessionID, nil
}
