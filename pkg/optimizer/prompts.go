package optimizer

import (
	"fmt"
	"strings"
)

func analyzePrompt(script, mode string) string {
	return fmt.Sprintf(`MODE: %s

You are an elite script analyst for short-form viral content. Analyze each of the script's hooks separately, then the body, and recommend the best combination.

Score each hook 1-10 on these weighted criteria:

| Criteria | Description | Weight |
|----------|-------------|--------|
| STOP POWER | Would someone stop scrolling? First 3 seconds test. | 25%% |
| CURIOSITY GAP | Creates "I need to know more" feeling | 20%% |
| SPECIFICITY | Uses specific names, numbers, claims (not vague) | 15%% |
| EMOTION TRIGGER | Triggers fear, shock, outrage, FOMO, or intrigue | 15%% |
| PATTERN INTERRUPT | Breaks expectations, contrarian, unexpected angle | 15%% |
| CLARITY | Instantly understandable (no confusion) | 10%% |

Then rank the hooks, pick the winner, and rewrite the script under a
"## FINAL SCRIPT" header starting with the winning hook.

IMPORTANT: At the very end of your response, include these exact lines for parsing:
BEST_HOOK: [number 1-5]
HOOK_RANKING: [comma separated numbers, e.g., 3,1,5,2,4]
CREDIBILITY_SCORE: [1-10]
VIRAL_POTENTIAL: [Weak / Average / Strong / Viral Ready]

SCRIPT TO ANALYZE:

%s`, strings.ToUpper(mode), script)
}
