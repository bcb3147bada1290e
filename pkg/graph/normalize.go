package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sisyphuswastaken/web-scraper/pkg/common"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
)

// DefaultSimilarityThreshold is the minimum Similarity score for two
// mentions to be clustered together.
const DefaultSimilarityThreshold = 85.0

// ErrInvalidThreshold is returned when a similarity threshold lies outside
// [0, 100].
var ErrInvalidThreshold = errors.New("similarity threshold must be within [0, 100]")

// NormalizerParams configures a Normalizer.
type NormalizerParams struct {
	Threshold float64
}

// DefaultNormalizerParams returns the parameters used when nothing is
// configured.
func DefaultNormalizerParams() NormalizerParams {
	return NormalizerParams{Threshold: DefaultSimilarityThreshold}
}

// Normalizer clusters raw mentions from all chunks of an article into
// canonical entities. It holds no state between calls and is safe for
// concurrent use.
type Normalizer struct {
	threshold float64
}

// NewNormalizer validates params and returns a Normalizer.
func NewNormalizer(params NormalizerParams) (*Normalizer, error) {
	t := params.Threshold
	if math.IsNaN(t) || t < 0 || t > 100 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return &Normalizer{threshold: t}, nil
}

// Threshold returns the configured similarity threshold.
func (n *Normalizer) Threshold() float64 {
	return n.threshold
}

// NormalizeStats describes a Normalize run.
type NormalizeStats struct {
	Mentions  int `json:"mentions"`
	Skipped   int `json:"skipped"`
	Groups    int `json:"groups"`
	Entities  int `json:"entities"`
	Ambiguous int `json:"ambiguous"`
}

type spelling struct {
	text  string
	count int
}

// mentionGroup collects mentions with the same MentionKey and type.
type mentionGroup struct {
	key       string
	typ       common.EntityType
	compare   string
	count     int
	firstSeen int
	spellings []spelling
}

func (g *mentionGroup) add(text string) {
	g.count++
	for i := range g.spellings {
		if g.spellings[i].text == text {
			g.spellings[i].count++
			return
		}
	}
	g.spellings = append(g.spellings, spelling{text: text, count: 1})
}

// display is the most frequent spelling, ties going to the first seen.
func (g *mentionGroup) display() string {
	best := g.spellings[0]
	for _, s := range g.spellings[1:] {
		if s.count > best.count {
			best = s
		}
	}
	return best.text
}

type cluster struct {
	members   []int
	typ       common.EntityType
	count     int
	firstSeen int
}

// Normalize clusters mentions into canonical entities and returns, along
// with them, a map from every case-normalized mention text to its entity.
//
// Blank mentions are skipped. Mentions are grouped by exact normalized text
// and type first; groups are then visited from most to least frequent
// (first occurrence breaks ties) and each one joins the most similar
// existing cluster whose score reaches the threshold and whose type is
// compatible. Equal scores prefer the cluster with more mentions, then the
// one seen first. A group that matches nothing starts a new cluster, and the
// first group of a cluster provides its canonical name.
func (n *Normalizer) Normalize(mentions []common.RawMention) ([]CanonicalEntity, MentionMap, NormalizeStats) {
	stats := NormalizeStats{Mentions: len(mentions)}

	groups := n.groupMentions(mentions, &stats)
	stats.Groups = len(groups)
	if len(groups) == 0 {
		return []CanonicalEntity{}, MentionMap{}, stats
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].firstSeen < groups[j].firstSeen
	})

	uf := newUnionFind(len(groups))
	clusters := make(map[int]*cluster)
	roots := make([]int, 0)

	for i := range groups {
		g := &groups[i]
		best := -1
		bestScore := -1.0
		for _, r := range roots {
			c := clusters[r]
			if !c.typ.Compatible(g.typ) {
				continue
			}
			score := n.clusterScore(groups, c, g)
			if score < n.threshold {
				continue
			}
			if best < 0 || score > bestScore ||
				(score == bestScore && preferCluster(c, clusters[best])) {
				best = r
				bestScore = score
			}
		}

		if best < 0 {
			clusters[i] = &cluster{
				members:   []int{i},
				typ:       g.typ,
				count:     g.count,
				firstSeen: g.firstSeen,
			}
			roots = append(roots, i)
			continue
		}

		uf.union(best, i)
		c := clusters[best]
		c.members = append(c.members, i)
		c.count += g.count
		c.firstSeen = min(c.firstSeen, g.firstSeen)
		if c.typ.IsUnknown() {
			c.typ = g.typ
		}
		logger.Debug("[Normalize] Merged mention", "mention", g.display(), "into", groups[best].display(), "score", bestScore)
	}

	entities := make([]CanonicalEntity, 0, len(roots))
	byID := make(map[EntityID]CanonicalEntity, len(roots))
	for idx, members := range uf.components() {
		root := members[0]
		c := clusters[root]

		aliasSet := make(map[string]struct{})
		for _, m := range members {
			for _, s := range groups[m].spellings {
				aliasSet[s.text] = struct{}{}
			}
		}
		aliases := make([]string, 0, len(aliasSet))
		for a := range aliasSet {
			aliases = append(aliases, a)
		}
		sort.Strings(aliases)

		entity := CanonicalEntity{
			ID:            EntityID(idx + 1),
			CanonicalName: groups[root].display(),
			Type:          c.typ,
			Aliases:       aliases,
			MentionCount:  c.count,
		}
		entities = append(entities, entity)
		byID[entity.ID] = entity
	}

	mentionMap := make(MentionMap, len(groups))
	ambiguous := make(map[string]struct{})
	for idx, members := range uf.components() {
		entity := entities[idx]
		for _, m := range members {
			if mentionMap.assign(groups[m].key, entity, byID) {
				ambiguous[groups[m].key] = struct{}{}
			}
		}
	}
	stats.Entities = len(entities)
	stats.Ambiguous = len(ambiguous)

	logger.Debug("[Normalize] Normalized mentions", "mentions", stats.Mentions, "skipped", stats.Skipped, "groups", stats.Groups, "entities", stats.Entities, "ambiguous", stats.Ambiguous)

	return entities, mentionMap, stats
}

func (n *Normalizer) groupMentions(mentions []common.RawMention, stats *NormalizeStats) []mentionGroup {
	index := make(map[string]int)
	groups := make([]mentionGroup, 0)

	for pos, m := range mentions {
		text := strings.Join(strings.Fields(m.Text), " ")
		key := MentionKey(text)
		if key == "" {
			stats.Skipped++
			logger.Debug("[Normalize] Skipping blank mention", "chunk", m.ChunkIndex, "position", pos)
			continue
		}

		typ := m.Type.Normalize()
		gk := key + "\x00" + string(typ)
		i, ok := index[gk]
		if !ok {
			i = len(groups)
			index[gk] = i
			groups = append(groups, mentionGroup{
				key:       key,
				typ:       typ,
				compare:   comparableForm(text),
				firstSeen: pos,
			})
		}
		groups[i].add(text)
	}

	return groups
}

// clusterScore is the best similarity between g and any member of c.
func (n *Normalizer) clusterScore(groups []mentionGroup, c *cluster, g *mentionGroup) float64 {
	best := 0.0
	for _, m := range c.members {
		other := &groups[m]
		var score float64
		if other.key == g.key {
			score = 100
		} else {
			score = tokenSetRatio(other.compare, g.compare)
		}
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

func preferCluster(candidate, current *cluster) bool {
	if candidate.count != current.count {
		return candidate.count > current.count
	}
	return candidate.firstSeen < current.firstSeen
}
