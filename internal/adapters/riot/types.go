// Package riot flattens already-downloaded match-v5 payloads into the
// match-history dataset.
package riot

// MatchResponse is one /lol/match/v5/matches/{matchId} payload.
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64              `json:"gameCreation"`
	GameDuration int                `json:"gameDuration"` // seconds
	GameVersion  string             `json:"gameVersion"`
	QueueID      int                `json:"queueId"`
	Participants []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	PUUID        string `json:"puuid"`
	ChampionName string `json:"championName"`
	TeamPosition string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Role         string `json:"role"`
	Win          bool   `json:"win"`

	Kills                       int `json:"kills"`
	Deaths                      int `json:"deaths"`
	Assists                     int `json:"assists"`
	GoldEarned                  int `json:"goldEarned"`
	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken"`
	DamageSelfMitigated         int `json:"damageSelfMitigated"`
	VisionScore                 int `json:"visionScore"`
	WardsPlaced                 int `json:"wardsPlaced"`
	WardsKilled                 int `json:"wardsKilled"`
	ChampLevel                  int `json:"champLevel"`
	ChampExperience             int `json:"champExperience"`

	Challenges Challenges `json:"challenges"`
	Perks      Perks      `json:"perks"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"` // Trinket
}

type Challenges struct {
	KillParticipation float64 `json:"killParticipation"`
}

type Perks struct {
	Styles []PerkStyle `json:"styles"`
}

// PerkStyle is a rune tree; Styles[0] is the primary tree and Styles[1] the secondary.
type PerkStyle struct {
	Description string `json:"description"`
	Style       int    `json:"style"`
}

// Items returns item0..item6 in slot order.
func (p MatchParticipant) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// Participant returns the participant with the given puuid.
func (m MatchResponse) Participant(puuid string) (MatchParticipant, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return MatchParticipant{}, false
}
