package kartstate

// KartState is the dispatch-time view of a kart.
type KartState struct {
	KartID      string `json:"kart_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	QueueLength int    `json:"queue_length"`
}

type KartMeta struct {
	KartID   string `json:"kart_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
