// Package policy holds the editorial rules the pipeline enforces: gate
// blocklist and caps limits, pass cutoff, revision budget, variant count,
// and the fallback angle templates the writer uses when planning comes up
// short. Policy is plain data loaded from YAML and passed into stages at
// construction.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AngleTemplate is a deterministic fallback angle used when the planner
// produces fewer angles than requested.
type AngleTemplate struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	HookStyle   string   `yaml:"hook_style"`
	Template    string   `yaml:"template"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

// Policy is the complete rule set. Zero fields are filled from Default on
// load, so a partial YAML file only overrides what it names.
type Policy struct {
	VariantCount   int             `yaml:"variant_count"`
	RevisionBudget int             `yaml:"revision_budget"`
	PassCutoff     int             `yaml:"pass_cutoff"`
	Blocklist      []string        `yaml:"blocklist"`
	CapsAllowlist  []string        `yaml:"caps_allowlist"`
	CapsLimit      int             `yaml:"caps_limit"`
	DefaultAngles  []AngleTemplate `yaml:"default_angles"`
}

// Default returns the built-in policy.
func Default() *Policy {
	return &Policy{
		VariantCount:   3,
		RevisionBudget: 2,
		PassCutoff:     60,
		Blocklist: []string{
			"DESTROYED", "PANICKING", "TERRIFYING", "CHAOS", "INSANE",
			"MIND-BLOWING", "BACKSTABBED", "EXPOSED", "SHOCKING", "BOMBSHELL",
		},
		CapsAllowlist: []string{
			"AI", "API", "CEO", "CTO", "INR", "USD", "GPT", "LLM", "ML",
			"AWS", "GCP", "IBM", "GPU", "CPU", "RAM", "SSD", "NFT", "VC",
			"HOOK", "CTA", "PDF", "URL", "HTML", "CSS", "SQL", "SDK",
		},
		CapsLimit: 3,
		DefaultAngles: []AngleTemplate{
			{
				Name:        "The Hidden Strategy Angle",
				Description: "Focus on the secret strategy behind the topic",
				HookStyle:   "shock",
				Template:    "Reveal the hidden genius strategy that most people miss",
			},
			{
				Name:        "The Disruption Angle",
				Description: "How this is disrupting or changing an industry",
				HookStyle:   "shock",
				Template:    "Show how this is beating traditional players",
			},
			{
				Name:        "The India Opportunity Angle",
				Description: "What this means for the Indian audience",
				HookStyle:   "financial",
				Template:    "Connect to the Indian market, rupee amounts, opportunities",
				Keywords:    []string{"india", "indian"},
			},
			{
				Name:        "The Future Tech Angle",
				Description: "How this represents the future happening now",
				HookStyle:   "story",
				Template:    "Position as science fiction becoming reality",
				Keywords:    []string{"ai", "tech", "device", "robot", "app"},
			},
			{
				Name:        "The Business Genius Angle",
				Description: "Break down the brilliant business strategy",
				HookStyle:   "financial",
				Template:    "Analyze the business model and revenue potential",
				Keywords:    []string{"business", "company", "startup", "founder"},
			},
			{
				Name:        "The Underdog Story Angle",
				Description: "Focus on the founder or company journey",
				HookStyle:   "story",
				Template:    "Tell the human story behind the success",
			},
		},
	}
}

// Load reads a policy from a YAML file. An empty path returns Default.
// Fields the file omits keep their default values.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	p.fillZero()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) fillZero() {
	def := Default()
	if p.VariantCount <= 0 {
		p.VariantCount = def.VariantCount
	}
	if p.RevisionBudget < 0 {
		p.RevisionBudget = def.RevisionBudget
	}
	if p.PassCutoff <= 0 {
		p.PassCutoff = def.PassCutoff
	}
	if p.Blocklist == nil {
		p.Blocklist = def.Blocklist
	}
	if p.CapsAllowlist == nil {
		p.CapsAllowlist = def.CapsAllowlist
	}
	if p.CapsLimit <= 0 {
		p.CapsLimit = def.CapsLimit
	}
	if len(p.DefaultAngles) == 0 {
		p.DefaultAngles = def.DefaultAngles
	}
}

// SetVariantCount overrides the variant count, subject to the same
// validation as a loaded policy: the fan-out cannot produce more variants
// than there are default angles to pad with.
func (p *Policy) SetVariantCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("variant count must be positive, got %d", n)
	}
	p.VariantCount = n
	return p.validate()
}

func (p *Policy) validate() error {
	if p.PassCutoff > 100 {
		return fmt.Errorf("pass_cutoff must be in [1,100], got %d", p.PassCutoff)
	}
	if p.VariantCount > len(p.DefaultAngles) {
		return fmt.Errorf("variant_count %d exceeds available default angles (%d)", p.VariantCount, len(p.DefaultAngles))
	}
	return nil
}
