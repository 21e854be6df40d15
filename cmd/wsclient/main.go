// Command wsclient plays a game against the server from a terminal.
//
//	wsclient -player alice               # queue for a match
//	wsclient -player alice -game <id>    # join an existing game socket
//
// Type moves as UCI ("e2e4", "e7e8q"), or "undo", "resign", "quit".
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/obslog"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

func main() {
	server := flag.String("server", "ws://localhost:3000", "server base URL")
	player := flag.String("player", "", "player ID")
	gameID := flag.String("game", "", "game to join; empty queues for a match")
	flag.Parse()

	if err := obslog.Init(os.Getenv("LOG_LEVEL"), "console"); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := obslog.L()

	if strings.TrimSpace(*player) == "" {
		log.Fatal("-player is required")
	}

	ctx := context.Background()
	if *gameID == "" {
		id, color, err := awaitMatch(ctx, *server, *player)
		if err != nil {
			log.Fatal("matchmaking", zap.Error(err))
		}
		fmt.Printf("matched into %s as %s\n", id, color)
		*gameID = id
	}

	if err := play(ctx, *server, *player, *gameID); err != nil {
		log.Fatal("game", zap.Error(err))
	}
}

func endpoint(server, path, player string) string {
	return strings.TrimRight(server, "/") + path + "?playerId=" + url.QueryEscape(player)
}

func dial(ctx context.Context, target string) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, target, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	return conn, err
}

func awaitMatch(ctx context.Context, server, player string) (string, model.Color, error) {
	conn, err := dial(ctx, endpoint(server, "/ws/matchmaking", player))
	if err != nil {
		return "", "", err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	fmt.Println("waiting for an opponent...")
	for {
		var msg ws.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return "", "", err
		}
		switch msg.Type {
		case ws.MessageTypeMatchFound:
			var ev model.MatchFoundEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				return "", "", err
			}
			return ev.GameID, ev.Color, nil
		case ws.MessageTypeError:
			return "", "", errors.New(errorText(msg.Payload))
		}
	}
}

func play(ctx context.Context, server, player, gameID string) error {
	conn, err := dial(ctx, endpoint(server, "/ws/game/"+url.PathEscape(gameID), player))
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	readErr := make(chan error, 1)
	go func() {
		for {
			var msg ws.Message
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				readErr <- err
				return
			}
			switch msg.Type {
			case ws.MessageTypeGameState:
				var st model.GameState
				if err := json.Unmarshal(msg.Payload, &st); err == nil {
					fmt.Print(render(st))
				}
			case ws.MessageTypeError:
				fmt.Println("error:", errorText(msg.Payload))
			}
		}
	}()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
		close(lines)
	}()

	for {
		select {
		case err := <-readErr:
			var ce websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.StatusNormalClosure {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok || line == "quit" {
				return nil
			}
			msg, err := command(line)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return err
			}
		}
	}
}

func command(line string) (ws.Message, error) {
	switch strings.ToLower(line) {
	case "":
		return ws.Message{}, errors.New("empty command")
	case "undo":
		return ws.NewMessage(ws.MessageTypeUndo, nil)
	case "resign":
		return ws.NewMessage(ws.MessageTypeResign, nil)
	}
	from, to, promo, err := model.ParseUCI(line)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.NewMessage(ws.MessageTypeMove, model.MoveRequest{From: from.Name(), To: to.Name(), Promotion: promo})
}

func errorText(raw json.RawMessage) string {
	var p ws.ErrorPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Error == "" {
		return string(raw)
	}
	return p.Error
}

var glyphs = map[model.Color]map[model.PieceType]string{
	model.White: {model.King: "K", model.Queen: "Q", model.Rook: "R", model.Bishop: "B", model.Knight: "N", model.Pawn: "P"},
	model.Black: {model.King: "k", model.Queen: "q", model.Rook: "r", model.Bishop: "b", model.Knight: "n", model.Pawn: "p"},
}

func render(st model.GameState) string {
	var b strings.Builder
	b.WriteString("\n")
	for r, row := range st.Board {
		fmt.Fprintf(&b, "%d ", 8-r)
		for _, pc := range row {
			if pc == nil {
				b.WriteString(" .")
				continue
			}
			b.WriteString(" " + glyphs[pc.Color][pc.Type])
		}
		b.WriteString("\n")
	}
	b.WriteString("   a b c d e f g h\n")

	if n := len(st.MoveHistory); n > 0 {
		fmt.Fprintf(&b, "last: %s\n", st.MoveHistory[n-1].Notation)
	}
	switch {
	case st.Resolve != nil:
		winner := "nobody"
		if st.Winner != nil {
			winner = string(*st.Winner)
		}
		fmt.Fprintf(&b, "game over: %s, winner %s\n", *st.Resolve, winner)
	case st.IsCheck:
		fmt.Fprintf(&b, "%s to move (check) > ", st.ToMove)
	default:
		fmt.Fprintf(&b, "%s to move > ", st.ToMove)
	}
	return b.String()
}
