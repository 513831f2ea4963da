package serpapi

import "SportsSync/internal/model"

// gamesEnvelope sports_results.games 形态的响应
type gamesEnvelope struct {
	Error         string `json:"error"`
	SportsResults *struct {
		Title string          `json:"title"`
		Games []model.RawGame `json:"games"`
	} `json:"sports_results"`
}

// standingsEnvelope sports_results.standings 形态：每个分区一个 section
type standingsEnvelope struct {
	Error         string `json:"error"`
	SportsResults *struct {
		Standings []standingsSection `json:"standings"`
	} `json:"sports_results"`
}

type standingsSection struct {
	Title string          `json:"title"`
	Teams []model.RawTeam `json:"teams"`
}
