package extract

import (
	"fmt"
	"strings"
	"time"
)

// maxPreviewChars caps how much page text goes into the prompt.
const maxPreviewChars = 15000

const systemPrompt = `Você é um assistente que extrai oportunidades de fomento (editais, chamadas, prêmios) de páginas web.
Responda SOMENTE com um array JSON, sem texto adicional. Cada elemento segue exatamente este esquema:
[{"title": "...", "link": "...", "deadline": "YYYY-MM-DD ou vazio", "published": "YYYY-MM-DD ou vazio", "value": "...", "agency": "...", "description": "..."}]
Se nenhuma oportunidade for encontrada, responda [].`

// buildUserPrompt assembles the extraction instruction for one page. The
// deadline window and value cap are encoded as instructions to the
// model; the caller still filters afterwards.
func buildUserPrompt(content, pageURL, group, pattern string, minDays int, maxValue float64, now time.Time) string {
	preview := content
	if len(preview) > maxPreviewChars {
		// Cut on a rune boundary so accented text is not split
		// mid-sequence.
		runes := []rune(preview)
		if len(runes) > maxPreviewChars {
			runes = runes[:maxPreviewChars]
		}
		preview = string(runes)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Data de hoje: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "URL da página: %s\n", pageURL)
	fmt.Fprintf(&sb, "Grupo: %s\n", group)
	fmt.Fprintf(&sb, "Considere apenas oportunidades com prazo final em %s ou depois.\n",
		now.AddDate(0, 0, minDays).Format("2006-01-02"))
	if pattern != "" {
		fmt.Fprintf(&sb, "Considere apenas oportunidades cujo título corresponda ao padrão: %s\n", pattern)
	}
	if maxValue > 0 {
		fmt.Fprintf(&sb, "Ignore oportunidades que exijam contrapartida acima de %.0f.\n", maxValue)
	}
	sb.WriteString("\nConteúdo da página:\n")
	sb.WriteString(preview)
	return sb.String()
}
