package discord

import (
	"fmt"
	"strings"
	"tengoku-tracker/internal/constants"
	"tengoku-tracker/internal/domain"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	embedTitle = "✅ Match complete"
	footerText = "Tengoku Tracker • GG"
	contSuffix = " (cont.)"
)

type Message struct {
	Embeds    []Embed `json:"embeds"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`

	// Dropped counts fields that did not fit in the message.
	Dropped int `json:"-"`
}

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields"`
	Footer      *Footer `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Footer struct {
	Text string `json:"text"`
}

type TeamTotals struct {
	Kills, Deaths, Assists int
	CS, Gold               int
	DamageDealt            int
	DamageTaken            int
	TPChange               int
	Heal, Shield, CC       int
	AFK                    int
	MultiKills             int
}

func Totals(players []domain.ScoredPlayer) TeamTotals {
	var t TeamTotals
	for _, p := range players {
		t.Kills += p.Kills
		t.Deaths += p.Deaths
		t.Assists += p.Assists
		t.CS += p.CS
		t.Gold += p.Gold
		t.DamageDealt += p.DamageDealt
		t.DamageTaken += p.DamageTaken
		t.TPChange += p.TPChange
		t.Heal += p.HealOnTeammates
		t.Shield += p.ShieldOnTeammates
		t.CC += p.CCScore
		t.MultiKills += p.MultiKill
		if p.WasAfk {
			t.AFK++
		}
	}
	return t
}

// Render builds the webhook message for a recorded match. Output depends only on its inputs.
func Render(result *domain.MatchResult, cfg Config) Message {
	r := renderer{p: message.NewPrinter(language.French)}

	var fields []Field
	fields = append(fields, r.teamFields("🏆", "Winners", result.Winners())...)
	fields = append(fields, r.teamFields("💔", "Losers", result.Losers())...)

	head := Embed{
		Title:       embedTitle,
		Description: fmt.Sprintf("ID: `%s`", result.GameID),
		Timestamp:   timestamp(result.PlayedAt),
		Color:       constants.EmbedColorValidated,
	}

	embeds, dropped := pack(head, fields)
	return Message{
		Embeds:    embeds,
		Username:  cfg.Username,
		AvatarURL: cfg.AvatarURL,
		Dropped:   dropped,
	}
}

type renderer struct {
	p *message.Printer
}

func (r renderer) num(n int) string {
	return r.p.Sprintf("%d", n)
}

func (r renderer) signed(n int) string {
	if n > 0 {
		return "+" + r.num(n)
	}
	return r.num(n)
}

func kdaRatio(k, d, a int) string {
	return fmt.Sprintf("%.2f", float64(k+a)/float64(max(1, d)))
}

func tpBadge(tp int) string {
	switch {
	case tp > 0:
		return fmt.Sprintf("📈 **+%d TP**", tp)
	case tp < 0:
		return fmt.Sprintf("📉 **%d TP**", tp)
	default:
		return "➖ **0 TP**"
	}
}

func (r renderer) teamHeader(icon, label string, t TeamTotals) string {
	return fmt.Sprintf("%s **%s**\n", icon, label) +
		fmt.Sprintf("K/D/A: **%s/%s/%s** *(KDA %s)* • 🌾 CS **%s** • 🪙 **%s** • 🔥/🩸 **%s**/**%s**\n",
			r.num(t.Kills), r.num(t.Deaths), r.num(t.Assists), kdaRatio(t.Kills, t.Deaths, t.Assists),
			r.num(t.CS), r.num(t.Gold), r.num(t.DamageDealt), r.num(t.DamageTaken)) +
		fmt.Sprintf("🩹 **%s** • 🛡️ **%s** • 🧊 CC **%s** • 💥 **%s** • 💤 AFK **%d** • TP **%s**",
			r.num(t.Heal), r.num(t.Shield), r.num(t.CC), r.num(t.MultiKills), t.AFK, r.signed(t.TPChange))
}

func (r renderer) playerLine(p domain.ScoredPlayer) string {
	name := p.GameName
	if p.TagLine != "" {
		name += "#" + p.TagLine
	}

	badge := tpBadge(p.TPChange)
	if p.WasAfk {
		badge += " 💤 AFK"
	}

	return strings.Join([]string{
		fmt.Sprintf("• **%s** - *%s* (L%d)", name, p.Champion, p.Level),
		fmt.Sprintf("│ ⚔️ **%d**  💀 **%d**  🤝 **%d**  *(KDA %s)*", p.Kills, p.Deaths, p.Assists, kdaRatio(p.Kills, p.Deaths, p.Assists)),
		fmt.Sprintf("│ 🌾 **CS** %s  🪙 **%s**  🔥 **%s** / 🩸 **%s**", r.num(p.CS), r.num(p.Gold), r.num(p.DamageDealt), r.num(p.DamageTaken)),
		"│ " + badge,
	}, "\n")
}

func (r renderer) teamFields(icon, label string, players []domain.ScoredPlayer) []Field {
	lines := make([]string, len(players))
	for i, p := range players {
		lines[i] = r.playerLine(p)
	}
	body := r.teamHeader(icon, label, Totals(players)) + "\n\n" + strings.Join(lines, "\n")
	fieldName := icon + " " + label

	chunks := chunkLines(body, constants.EmbedFieldMaxLen)
	fields := make([]Field, len(chunks))
	for i, c := range chunks {
		name := fieldName
		if i > 0 {
			name += contSuffix
		}
		fields[i] = Field{Name: name, Value: c}
	}
	return fields
}

// chunkLines splits s into pieces of at most limit runes, breaking between lines.
// A single line longer than limit is cut mid-line.
func chunkLines(s string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.Split(s, "\n") {
		n := utf8.RuneCountInString(line)
		for n > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}

		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()

	return chunks
}

func embedLen(e Embed) int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	if e.Footer != nil {
		n += utf8.RuneCountInString(e.Footer.Text)
	}
	for _, f := range e.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	return n
}

// pack distributes fields over as many embeds as the message allows. The first embed
// carries the title block, the last one the footer. The character budget covers every
// embed of the message together; fields past it are dropped.
func pack(head Embed, fields []Field) ([]Embed, int) {
	footer := &Footer{Text: footerText}

	embeds := []Embed{head}
	cur := &embeds[0]
	cur.Fields = []Field{}
	total := embedLen(head) + utf8.RuneCountInString(footerText)

	for i, f := range fields {
		fl := utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
		if total+fl > constants.EmbedMaxTotalLen {
			embeds[len(embeds)-1].Footer = footer
			return embeds, len(fields) - i
		}
		if len(cur.Fields) == constants.EmbedMaxFields {
			if len(embeds) == constants.MessageMaxEmbeds {
				embeds[len(embeds)-1].Footer = footer
				return embeds, len(fields) - i
			}
			embeds = append(embeds, Embed{Color: head.Color, Fields: []Field{}})
			cur = &embeds[len(embeds)-1]
		}
		cur.Fields = append(cur.Fields, f)
		total += fl
	}

	embeds[len(embeds)-1].Footer = footer
	return embeds, 0
}

func messageLen(embeds []Embed) int {
	n := 0
	for _, e := range embeds {
		n += embedLen(e)
	}
	return n
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
