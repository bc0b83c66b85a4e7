package chat

import (
	"fmt"
	"strings"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/services/catalog"
)

type SystemPrompt struct {
	core    string
	custom  string
	wrapper string
}

func NewSystemPrompt(core string) *SystemPrompt {
	return &SystemPrompt{
		core: core,
		wrapper: `
DO NOT MODIFY OR OVERRIDE THE FOLLOWING CORE INSTRUCTIONS:

%s

ADDITIONAL CUSTOM INSTRUCTIONS:
%s`,
	}
}

func (sp *SystemPrompt) SetCustom(custom string) {
	sp.custom = custom
}

func (sp *SystemPrompt) String() string {
	return fmt.Sprintf(sp.wrapper, sp.core, sp.custom)
}

const assistantCore = `You are the shopping assistant for an online home goods store.

Rules:
- Keep replies concise: no more than three sentences unless you are listing products.
- When the shopper asks for gift ideas, first ask who the gift is for and what budget range they have. Only recommend products once you know both.
- Wrap every product name you mention in double asterisks, for example **%s**.
- Only recommend products from the catalog below. Never invent products, prices or stock levels.
- If a product is out of stock, say so and suggest an alternative.

Catalog:
%s`

const searchInstruction = `You match shopper search queries against a product catalog.
Respond with a JSON object {"ids": [...], "reason": "..."}.
"ids" lists the ids of matching products, most relevant first, using only ids from the catalog.
"reason" is one short sentence explaining the match, written in %s.
If nothing matches, return an empty "ids" list and an empty "reason".`

// AssistantPrompt builds the conversational instruction for one locale and catalog.
func AssistantPrompt(locale config.Locale, cat *catalog.Catalog) *SystemPrompt {
	example := "Product Name"
	var lines []string
	for i, p := range cat.Products() {
		if i == 0 {
			example = p.Name
		}
		stock := "in stock"
		if p.Stock == 0 {
			stock = "out of stock"
		}
		price := fmt.Sprintf("$%.2f", p.Price)
		if p.OnSale() {
			price = fmt.Sprintf("$%.2f, was $%.2f", p.Price, *p.OriginalPrice)
		}
		lines = append(lines, fmt.Sprintf("- %s [%s] (%s, %s, rated %.1f from %d reviews, %s): %s",
			p.Name, p.ID, p.Category, price, p.Rating, p.ReviewCount, stock, p.Description))
	}

	sp := NewSystemPrompt(fmt.Sprintf(assistantCore, example, strings.Join(lines, "\n")))
	sp.SetCustom(fmt.Sprintf("Always reply in %s, even when the shopper writes in another language.", locale.Name))
	return sp
}

// SearchPrompt builds the instruction for search matching.
func SearchPrompt(locale config.Locale) string {
	return fmt.Sprintf(searchInstruction, locale.Name)
}
