package dto

// HackathonResultsResponse lists the categorized student sets for a
// hackathon whose results are published. The three category sets are
// disjoint; participants is their union plus students whose runs failed.
type HackathonResultsResponse struct {
	HackathonID  uint   `json:"hackathon_id"`
	Shortlisted  []uint `json:"shortlisted"`
	Revisit      []uint `json:"revisit"`
	Rejected     []uint `json:"rejected"`
	Participants []uint `json:"participants"`
}

// HackathonInsightsResponse exposes the aggregated enrichment collected
// across a hackathon's evaluations.
type HackathonInsightsResponse struct {
	HackathonID uint     `json:"hackathon_id"`
	SkillGaps   []string `json:"skill_gaps"`
	Keywords    []string `json:"keywords"`
}
