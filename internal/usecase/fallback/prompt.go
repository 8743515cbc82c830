package fallback

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
)

// maxPromptCategories keeps the intent prompt short on large catalogs.
const maxPromptCategories = 20

func catalogContext(c catalog.Catalog) string {
	categories := c.Categories
	if len(categories) > maxPromptCategories {
		categories = categories[:maxPromptCategories]
	}

	var b strings.Builder
	b.WriteString("Attribute values available in the catalog:\n")
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(categories, ", "))
	fmt.Fprintf(&b, "Materials: %s\n", strings.Join(c.Materials, ", "))
	fmt.Fprintf(&b, "Styles: %s\n", strings.Join(c.Styles, ", "))
	fmt.Fprintf(&b, "Colors: %s\n", strings.Join(c.Colors, ", "))
	b.WriteString("\nWhere possible, translate abstract wording into these values.")
	return b.String()
}

func intentPrompt(query string, c catalog.Catalog) string {
	return fmt.Sprintf(`You help shoppers search a furniture store. The shopper typed: %q

The query may use vague or subjective wording. Identify those words and map them
to concrete attributes a product search can match.

%s

Reply with JSON only, no surrounding text:
{
  "abstract_terms": ["vague or subjective words from the query"],
  "concrete_attributes": {"<abstract term>": ["concrete attributes it implies"]},
  "enhanced_query": "the query rewritten with concrete terms"
}

For "cozy reading corner chair" a good answer is:
{
  "abstract_terms": ["cozy"],
  "concrete_attributes": {"cozy": ["plush", "cushioned", "fabric", "armchair"]},
  "enhanced_query": "plush cushioned fabric armchair for reading"
}

Query to analyse: %q
`, query, catalogContext(c), query)
}
