package local

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/brandlens/internal/domain/assets"
)

// Client is an offline reviewer used when no OpenAI key is configured.
// It inspects only the asset URL/filename and emits conservative findings in
// the same JSON schema the remote model is prompted for, so the rest of the
// pipeline (parse, store, overlay) behaves identically in local dev.
type Client struct{}

func NewClient() *Client { return &Client{} }

type finding struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation"`
	Page        *int     `json:"page,omitempty"`
	Timestamp   *float64 `json:"timestamp,omitempty"`
}

type output struct {
	AssetURL string `json:"asset_url"`
	Counts   struct {
		High   int `json:"high"`
		Medium int `json:"medium"`
		Low    int `json:"low"`
		Total  int `json:"total"`
	} `json:"counts"`
	Issues  []finding `json:"issues"`
	Summary string    `json:"summary"`
}

var draftRe = regexp.MustCompile(`(?i)(draft|wip|internal|confidential)`)

func (c *Client) Analyze(ctx context.Context, assetURL string, kind assets.Kind) (string, error) {
	out := output{AssetURL: assetURL}
	lower := strings.ToLower(assetURL)

	add := func(sev, category, desc, rec string) {
		n := len(out.Issues) + 1
		out.Issues = append(out.Issues, finding{
			ID:          fmt.Sprintf("local-%d", n),
			Category:    category,
			Severity:    sev,
			Description: desc,
			Remediation: rec,
		})
		switch sev {
		case "high":
			out.Counts.High++
		case "medium":
			out.Counts.Medium++
		default:
			out.Counts.Low++
		}
	}

	if m := draftRe.FindString(lower); m != "" {
		add("medium", "brand",
			fmt.Sprintf("Filename suggests non-final material (%q).", m),
			"Confirm this is the approved final version before publication.")
	}
	switch kind {
	case assets.KindVideo, assets.KindPodcast:
		add("low", "compliance",
			"Automated offline review cannot inspect media content; disclosures and claims are unverified.",
			"Run a full AI review or a manual compliance pass before release.")
	default:
		add("low", "compliance",
			"Automated offline review cannot inspect file content; this result is a placeholder.",
			"Configure an OpenAI API key to enable full content analysis.")
	}

	out.Counts.Total = out.Counts.High + out.Counts.Medium + out.Counts.Low
	out.Summary = "Offline heuristic review only; no content-level findings were produced."

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal local review: %w", err)
	}
	return string(b), nil
}
