package model

type Player struct {
	ID string
}

type ClientPlayer struct {
	ID       string `json:"name"`
	Color    Color  `json:"color"`
	TimeLeft int    `json:"timeLeft"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// MatchFoundEvent is pushed to a queued player once paired.
type MatchFoundEvent struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
