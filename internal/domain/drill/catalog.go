package drill

import (
	"fmt"
	"sort"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// Ordered, read-only collection of drill definitions supplied at startup.
// ══════════════════════════════════════════════════════════════════════════════

// Catalog is an ordered, validated collection of drill definitions.
type Catalog struct {
	drills []Definition
}

// NewCatalog validates every definition and the name-unique-within-category
// invariant, preserving the supplied order.
func NewCatalog(drills []Definition) (*Catalog, error) {
	seen := make(map[string]bool, len(drills))
	for _, d := range drills {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		key := d.Category + "/" + d.Name
		if seen[key] {
			return nil, shared.NewDomainError("drill", "NewCatalog", shared.ErrAlreadyExists,
				fmt.Sprintf("duplicate drill %q in category %q", d.Name, d.Category))
		}
		seen[key] = true
	}

	out := make([]Definition, len(drills))
	copy(out, drills)
	return &Catalog{drills: out}, nil
}

// MustCatalog panics on an invalid catalog. Intended for the built-in set.
func MustCatalog(drills []Definition) *Catalog {
	c, err := NewCatalog(drills)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the definitions in catalog order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.drills))
	copy(out, c.drills)
	return out
}

// Len returns the number of drills.
func (c *Catalog) Len() int {
	return len(c.drills)
}

// Categories returns the sorted unique category names.
func (c *Catalog) Categories() []string {
	set := make(map[string]bool)
	for _, d := range c.drills {
		set[d.Category] = true
	}
	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the definitions of one category, in catalog order.
func (c *Catalog) ByCategory(category string) []Definition {
	var out []Definition
	for _, d := range c.drills {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Find returns the first drill with the given name.
func (c *Catalog) Find(name string) (Definition, error) {
	for _, d := range c.drills {
		if d.Name == name {
			return d, nil
		}
	}
	return Definition{}, shared.NewDomainError("drill", "Find", shared.ErrNotFound,
		fmt.Sprintf("drill %q not in catalog", name))
}

// FindInCategory returns the drill with the given name inside a category.
func (c *Catalog) FindInCategory(category, name string) (Definition, error) {
	for _, d := range c.drills {
		if d.Category == category && d.Name == name {
			return d, nil
		}
	}
	return Definition{}, shared.NewDomainError("drill", "FindInCategory", shared.ErrNotFound,
		fmt.Sprintf("drill %q not in category %q", name, category))
}

// Default returns the built-in pickleball drill catalog.
func Default() *Catalog {
	return MustCatalog(defaultDrills)
}

// defaultDrills is the static catalog shipped with the app. Thresholds map
// mastery tier -> cutoff; see Definition for floor/ceiling semantics.
var defaultDrills = []Definition{
	{
		Category:    "Serve & Return",
		Name:        "Deep Target Practice",
		Description: "Alternate deep serves and deep returns crosscourt with your partner. Focus on depth and consistency.",
		Goal:        "8/10 serves and returns past the NVZ line",
		Duration:    "50 per side",
		Type:        TypeReps,
		Unit:        "serves",
		Total:       10,
		Thresholds:  Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "youtube",
			URL:    "https://www.youtube.com/watch?v=J3N7t1eZgSE",
			Poster: "https://img.youtube.com/vi/J3N7t1eZgSE/maxresdefault.jpg",
		},
		Instructions: []string{
			"Partner stands at baseline.",
			"Serve deep to their backhand.",
			"They return deep to your backhand.",
			"Count how many land past the transition zone line.",
		},
	},
	{
		Category:    "Third Shot Drop",
		Name:        "Drop-to-Kitchen Drill",
		Description: "Partner stands at NVZ; you hit third-shot drops aiming to land softly in the kitchen.",
		Goal:        "10 in a row without net/long",
		Duration:    "30 reps",
		Type:        TypeReps,
		Unit:        "drops",
		Total:       10,
		Thresholds:  Thresholds{5: 10, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/4753337/4753337-hd_1920_1080_25fps.mp4",
			Poster: "https://images.pexels.com/photos/2277981/pexels-photo-2277981.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Partner feeds from NVZ.",
			"Hit a drop shot from baseline.",
			"Aim for the kitchen (no bounces high).",
			"Restart count if you miss.",
		},
	},
	{
		Category:    "Third Shot Drive",
		Name:        "Drive & Defend",
		Description: "You drive third shots; partner blocks or resets into the kitchen.",
		Goal:        "≤2 unforced errors per rally",
		Duration:    "20 exchanges",
		Type:        TypeCounter,
		Unit:        "errors",
		Inverse:     true,
		Thresholds:  Thresholds{5: 0, 4: 2, 3: 4, 2: 6, 1: 100},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/5739227/5739227-hd_1920_1080_24fps.mp4",
			Poster: "https://images.pexels.com/photos/13061327/pexels-photo-13061327.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Drive the ball low over the net.",
			"Partner blocks it back.",
			"Count your unforced errors (net/out).",
		},
	},
	{
		Category:    "Dinking",
		Name:        "Crosscourt Dink Battle",
		Description: "Crosscourt dinks only. Vary height and spin while staying low and balanced.",
		Goal:        "15 consecutive dinks each",
		Duration:    "5 rounds",
		Type:        TypeCounter,
		Unit:        "consecutive dinks",
		Thresholds:  Thresholds{5: 20, 4: 15, 3: 10, 2: 5, 1: 0},
		Media: &MediaRef{
			Type: "image",
			URL:  "https://media.giphy.com/media/3o7btXkbsV26U95U08/giphy.gif",
		},
		Instructions: []string{
			"Both players at NVZ.",
			"Dink crosscourt only.",
			"Count the longest rally of the set.",
		},
	},
	{
		Category:    "Dinking",
		Name:        "Dink to Attack Recognition",
		Description: "Alternate soft dinks until one player gets an attackable ball, then finish the point.",
		Goal:        "Recognize 80% attackable balls",
		Duration:    "20 points",
		Type:        TypeReps,
		Unit:        "attacks",
		Total:       10,
		Thresholds:  Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "youtube",
			URL:    "https://www.youtube.com/watch?v=cM3tCqjTzT0",
			Poster: "https://img.youtube.com/vi/cM3tCqjTzT0/maxresdefault.jpg",
		},
		Instructions: []string{
			"Dink patiently.",
			"If ball is high (yellow zone), attack it.",
			"Count successful attacks vs opportunities.",
		},
	},
	{
		Category:    "Volleys",
		Name:        "Fast Hands Battle",
		Description: "Stand at NVZ and volley quickly with your partner - focus on control, not power.",
		Goal:        "10+ clean volleys each/rally",
		Duration:    "5 rounds",
		Type:        TypeCounter,
		Unit:        "volleys",
		Thresholds:  Thresholds{5: 15, 4: 10, 3: 6, 2: 3, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/4753337/4753337-hd_1920_1080_25fps.mp4",
			Poster: "https://images.pexels.com/photos/2277981/pexels-photo-2277981.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Volley back and forth without bouncing.",
			"Keep hands up.",
			"Count total volleys in a rally.",
		},
	},
	{
		Category:    "Transition Zone",
		Name:        "Reset & Advance",
		Description: "Start at baseline, hit a drop, move forward, and reset balls midcourt while advancing.",
		Goal:        "Reach NVZ under control 8/10",
		Duration:    "10 sequences",
		Type:        TypeReps,
		Unit:        "advances",
		Total:       10,
		Thresholds:  Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/5739227/5739227-hd_1920_1080_24fps.mp4",
			Poster: "https://images.pexels.com/photos/13061327/pexels-photo-13061327.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Start at baseline.",
			"Partner feeds hard balls.",
			"Reset into kitchen and take a step forward.",
			"Count successful arrivals at NVZ.",
		},
	},
	{
		Category:    "Strategy & Positioning",
		Name:        "Call & Cover",
		Description: "Play points emphasizing communication - call 'mine', 'yours', 'switch'.",
		Goal:        "Zero missed comm errors/game",
		Duration:    "3 games",
		Type:        TypeChecklist,
		Items:       []string{"Called every middle ball", "Switched on lobs", "Communicated 'out' balls"},
		Thresholds:  Thresholds{5: 3, 4: 2, 3: 1, 2: 0, 1: -1},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/4753337/4753337-hd_1920_1080_25fps.mp4",
			Poster: "https://images.pexels.com/photos/2277981/pexels-photo-2277981.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Play a full game.",
			"Focus ONLY on talking.",
			"Check off goals you achieved.",
		},
	},
	{
		Category:    "Game IQ",
		Name:        "Construct-the-Point",
		Description: "One player builds points with patient play; the other defends.",
		Goal:        "Win 60%+ constructed points",
		Duration:    "15 points",
		Type:        TypeReps,
		Unit:        "points",
		Total:       15,
		Thresholds:  Thresholds{5: 12, 4: 9, 3: 7, 2: 5, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/5739227/5739227-hd_1920_1080_24fps.mp4",
			Poster: "https://images.pexels.com/photos/13061327/pexels-photo-13061327.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Server must hit 3 shots before attacking.",
			"Count points won by constructing (patience).",
		},
	},
	{
		Category:    "Mental Composure",
		Name:        "Pressure Points",
		Description: "Mini-games to 5 under pressure (start at 8-8).",
		Goal:        "Win 3 of 5 close games",
		Duration:    "5 sets",
		Type:        TypeReps,
		Unit:        "games",
		Total:       5,
		Thresholds:  Thresholds{5: 4, 4: 3, 3: 2, 2: 1, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/4753337/4753337-hd_1920_1080_25fps.mp4",
			Poster: "https://images.pexels.com/photos/2277981/pexels-photo-2277981.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Start score at 8-8.",
			"Play to 11 (win by 2).",
			"Count games won.",
		},
	},

	// Advanced drills, gated by rating.
	{
		Category:    "Serve & Return",
		Name:        "Pro Target Practice (Small)",
		Description: "Same as Deep Target, but aim for the last 2 feet of the court.",
		Goal:        "8/10 serves/returns in deep zone",
		Duration:    "50 per side",
		Type:        TypeReps,
		Unit:        "serves",
		Total:       10,
		MinRating:   4.0,
		Thresholds:  Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "youtube",
			URL:    "https://www.youtube.com/watch?v=J3N7t1eZgSE",
			Poster: "https://img.youtube.com/vi/J3N7t1eZgSE/maxresdefault.jpg",
		},
		Instructions: []string{
			"Mark a line 2 feet from baseline.",
			"Serve/Return MUST land in this zone.",
			"Anything short is a miss.",
		},
	},
	{
		Category:    "Third Shot Drop",
		Name:        "Movement Drops",
		Description: "Partner feeds wide/short/deep; you must move and hit a perfect drop.",
		Goal:        "8/10 successful drops while moving",
		Duration:    "20 reps",
		Type:        TypeReps,
		Unit:        "drops",
		Total:       10,
		MinRating:   3.5,
		Thresholds:  Thresholds{5: 9, 4: 8, 3: 6, 2: 4, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/4753337/4753337-hd_1920_1080_25fps.mp4",
			Poster: "https://images.pexels.com/photos/2277981/pexels-photo-2277981.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Partner feeds to corners.",
			"Move, plant, and drop.",
			"Must land in kitchen.",
		},
	},
	{
		Category:    "Hand Speed",
		Name:        "Firefight Survival",
		Description: "Full speed volleys at NVZ. No resetting allowed.",
		Goal:        "Win 3/5 firefights",
		Duration:    "5 rallies",
		Type:        TypeReps,
		Unit:        "rallies",
		Total:       5,
		MinRating:   4.5,
		Thresholds:  Thresholds{5: 5, 4: 4, 3: 3, 2: 1, 1: 0},
		Media: &MediaRef{
			Type:   "video",
			URL:    "https://videos.pexels.com/video-files/5739227/5739227-hd_1920_1080_24fps.mp4",
			Poster: "https://images.pexels.com/photos/13061327/pexels-photo-13061327.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		Instructions: []string{
			"Both at NVZ.",
			"Speed up immediately.",
			"Keep ball going until error.",
		},
	},
}
