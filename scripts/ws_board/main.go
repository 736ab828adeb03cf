package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wireboard-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_board: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", os.Getenv("WIREBOARD_TOKEN"), "bearer token (see `wireboard token`)")
	room := flag.String("room", "", "room code to join")
	flag.Parse()

	if *token == "" || *room == "" {
		return errors.New("-token and -room are required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	u, err := url.Parse(*addr)
	if err != nil {
		return fmt.Errorf("parse addr: %w", err)
	}
	q := u.Query()
	q.Set("token", *token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := wsjson.Write(ctx, conn, proto.Outbound{Type: proto.TypeJoinRoom, Data: *room}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	fmt.Printf("Connected to %s, joining %s\n", *addr, *room)
	fmt.Println("Type messages and press Enter to chat. /clear clears the board, /leave leaves. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch env.Type {
		case proto.TypeChatMessage:
			var rec proto.ChatRecord
			if err := json.Unmarshal(env.Data, &rec); err != nil {
				log.Printf("unmarshal chat-message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", rec.CreatedAt.Format("15:04:05"), rec.Sender.Username, rec.Message)
		case proto.TypeUserJoined, proto.TypeUserLeft:
			var evt proto.UserEvent
			if err := json.Unmarshal(env.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", env.Type, err)
				continue
			}
			verb := "joined"
			if env.Type == proto.TypeUserLeft {
				verb = "left"
			}
			fmt.Printf("* %s %s\n", evt.Username, verb)
		case proto.TypeError:
			var msg string
			_ = json.Unmarshal(env.Data, &msg)
			fmt.Printf("! %s\n", msg)
		default:
			fmt.Printf("%s %s\n", env.Type, env.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var out proto.Outbound
			switch text {
			case "/clear":
				out = proto.Outbound{Type: proto.TypeDrawingUpdate, Data: proto.DrawingData{Type: "clear"}}
			case "/leave":
				out = proto.Outbound{Type: proto.TypeLeaveRoom}
			default:
				out = proto.Outbound{Type: proto.TypeChatMessage, Data: proto.ChatData{Text: text}}
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
