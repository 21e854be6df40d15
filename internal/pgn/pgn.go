// Package pgn renders stored games as PGN text.
package pgn

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/benbeisheim/chessrules-backend/internal/store"
)

const (
	eventName = "Chessrules Game"
	siteName  = "chessrules-backend"
)

// SAN replays UCI moves from the standard start and returns them in
// standard algebraic notation.
func SAN(moves []string) ([]string, error) {
	game := nchess.NewGame()
	notation := nchess.UCINotation{}
	out := make([]string, 0, len(moves))
	for i, raw := range moves {
		pos := game.Position()
		mv, err := notation.Decode(pos, strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return nil, fmt.Errorf("decode move %d (%s): %w", i+1, raw, err)
		}
		san := nchess.AlgebraicNotation{}.Encode(pos, mv)
		if err := game.Move(mv, nil); err != nil {
			return nil, fmt.Errorf("apply move %d (%s): %w", i+1, raw, err)
		}
		out = append(out, san)
	}
	return out, nil
}

// Export builds the PGN for rec.
func Export(rec *store.GameRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("export pgn: nil record")
	}
	san, err := SAN(rec.Moves)
	if err != nil {
		return "", fmt.Errorf("export pgn for %s: %w", rec.ID, err)
	}
	return build(rec, san), nil
}

func build(rec *store.GameRecord, san []string) string {
	result := mapResultToPGN(rec.Result())
	date := rec.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Event \"%s\"]\n", eventName)
	fmt.Fprintf(&b, "[Site \"%s\"]\n", siteName)
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitize(orUnknown(rec.WhiteID)))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitize(orUnknown(rec.BlackID)))
	if rec.Resolve != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitize(rec.Resolve))
	}
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", result)

	for i := 0; i < len(san); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, san[i])
		if i+1 < len(san) {
			b.WriteString(" ")
			b.WriteString(san[i+1])
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func mapResultToPGN(result string) string {
	switch result {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
