package services

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// TextGenerator erzeugt Platzhaltertexte und Personen für synthetische Datensätze.
type TextGenerator struct {
	faker *gofakeit.Faker
}

func NewTextGenerator(seed int64) *TextGenerator {
	return &TextGenerator{faker: gofakeit.New(seed)}
}

func (g *TextGenerator) Title() string {
	s := strings.TrimSuffix(g.faker.Sentence(g.faker.Number(3, 7)), ".")
	return strings.TrimSpace(s)
}

func (g *TextGenerator) Body() string {
	return g.faker.Paragraph(g.faker.Number(1, 3), g.faker.Number(2, 5), 12, "\n\n")
}

func (g *TextGenerator) Comment() string {
	return g.faker.Sentence(g.faker.Number(4, 14))
}

// Person liefert Vorname, Nachname und einen Benutzernamen; n hält Benutzernamen eindeutig.
func (g *TextGenerator) Person(n int) (first, last, username string) {
	first = g.faker.FirstName()
	last = g.faker.LastName()
	username = strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, n))
	username = strings.ReplaceAll(username, " ", "")
	return first, last, username
}
