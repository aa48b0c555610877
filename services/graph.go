package services

import (
	"math/rand"
	"time"

	"art-seeder/models"
)

// GraphGenerator erzeugt den synthetischen Sozialgraphen über Accounts und Publikationen.
// Alle Zufallsentscheidungen laufen über rng, damit Tests feste Seeds verwenden können.
type GraphGenerator struct {
	rng  *rand.Rand
	text *TextGenerator
	now  func() time.Time
}

func NewGraphGenerator(rng *rand.Rand, text *TextGenerator, now func() time.Time) *GraphGenerator {
	if now == nil {
		now = time.Now
	}
	return &GraphGenerator{rng: rng, text: text, now: now}
}

// Follows: jeder Künstler bekommt k zufällige, verschiedene Follower aus allen anderen Accounts.
func (g *GraphGenerator) Follows(artists, users []string) []models.SocialEdge {
	all := union(artists, users)
	var edges []models.SocialEdge
	for _, artist := range artists {
		candidates := make([]string, 0, len(all))
		for _, id := range all {
			if id != artist {
				candidates = append(candidates, id)
			}
		}
		for _, follower := range sample(g.rng, candidates, g.intn(len(candidates))) {
			edges = append(edges, models.SocialEdge{ActorID: follower, SubjectID: artist, Kind: models.EdgeFollow})
		}
	}
	return edges
}

// Likes: jede Publikation bekommt k verschiedene Likes, k < Anzahl Accounts.
func (g *GraphGenerator) Likes(users, publications []string) []models.SocialEdge {
	var edges []models.SocialEdge
	for _, pub := range publications {
		for _, user := range sample(g.rng, users, g.intn(len(users))) {
			edges = append(edges, models.SocialEdge{ActorID: user, SubjectID: pub, Kind: models.EdgeLike})
		}
	}
	return edges
}

// Comments: jede Publikation bekommt k verschiedene Kommentatoren, k < Anzahl Accounts / 10.
func (g *GraphGenerator) Comments(users, publications []string) []models.SocialEdge {
	var edges []models.SocialEdge
	for _, pub := range publications {
		for _, user := range sample(g.rng, users, g.intn(len(users)/10)) {
			edges = append(edges, models.SocialEdge{
				ActorID:   user,
				SubjectID: pub,
				Kind:      models.EdgeComment,
				Text:      g.text.Comment(),
			})
		}
	}
	return edges
}

// CollabRequests erzeugt count Anfragen; in der Hälfte der Fälle mit Empfänger, sonst offen.
func (g *GraphGenerator) CollabRequests(artists []string, count int) []models.CollabRequest {
	if len(artists) == 0 {
		return nil
	}
	reqs := make([]models.CollabRequest, 0, count)
	for i := 0; i < count; i++ {
		sender := artists[g.rng.Intn(len(artists))]
		req := models.CollabRequest{
			SenderID:    sender,
			Title:       g.text.Title(),
			Description: g.text.Body(),
			Status:      models.RequestOpen,
		}
		if g.rng.Intn(2) == 0 {
			others := make([]string, 0, len(artists)-1)
			for _, id := range artists {
				if id != sender {
					others = append(others, id)
				}
			}
			if len(others) > 0 {
				req.ReceiverID = others[g.rng.Intn(len(others))]
			}
		}
		if g.rng.Intn(2) == 0 {
			req.Status = models.RequestClosed
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// UpgradeRequests: etwa 10% der generierten User beantragen ein Künstlerprofil.
func (g *GraphGenerator) UpgradeRequests(users []PlainUser) []models.UpgradeRequest {
	var reqs []models.UpgradeRequest
	for _, u := range users {
		if g.rng.Float64() >= 0.1 {
			continue
		}
		status := models.UpgradePending
		if g.rng.Float64() < 0.1 {
			status = models.UpgradeRejected
		}
		reqs = append(reqs, models.UpgradeRequest{
			UserID:    u.ID,
			Name:      u.Name,
			Surname:   u.Surname,
			BirthDate: g.randomBirthDate(),
			Status:    status,
		})
	}
	return reqs
}

// randomBirthDate ist gleichverteilt über [Epoch - (jetzt - Epoch), jetzt].
func (g *GraphGenerator) randomBirthDate() time.Time {
	span := g.now().Unix()
	if span <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return time.Unix(g.rng.Int63n(2*span)-span, 0).UTC()
}

// intn ist rng.Intn mit k = 0 für leere Bereiche.
func (g *GraphGenerator) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rng.Intn(n)
}

// sample zieht k verschiedene Elemente ohne Zurücklegen.
func sample(rng *rand.Rand, pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}
	out := make([]string, 0, k)
	for _, i := range rng.Perm(len(pool))[:k] {
		out = append(out, pool[i])
	}
	return out
}

func union(sets ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range sets {
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
