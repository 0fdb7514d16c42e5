package seed

var firstNames = []string{
	"Ada", "Alan", "Barbara", "Claude", "Dennis", "Donald", "Edsger", "Frances",
	"Grace", "Guido", "Hedy", "Ivan", "John", "Ken", "Leslie", "Linus",
	"Margaret", "Niklaus", "Radia", "Rob", "Shafi", "Sophie", "Tim", "Yukihiro",
}

var lastNames = []string{
	"Allen", "Backus", "Cerf", "Dijkstra", "Engelbart", "Floyd", "Goldberg", "Hopper",
	"Hamilton", "Kay", "Knuth", "Lamport", "Liskov", "Lovelace", "McCarthy", "Perlman",
	"Pike", "Ritchie", "Shannon", "Thompson", "Torvalds", "Turing", "Wilson", "Wirth",
}

// Tag vocabularies are pairwise disjoint.
var tagVocabularies = [TagsPerPost][]string{
	{"Red", "Blue", "Green", "Teal", "Violet", "Amber", "Ivory", "Crimson"},
	{"Books", "Garden", "Music", "Sports", "Tools", "Travel", "Kitchen", "Games"},
	{"Handmade", "Rustic", "Sleek", "Ergonomic", "Vintage", "Modern", "Compact", "Durable"},
	{"Wood", "Steel", "Cotton", "Granite", "Bronze", "Leather", "Glass", "Bamboo"},
}

var sentencePool = []string{
	"Cursors encode offsets so every page can be resumed.",
	"Filters compile to a tree before any row is read.",
	"Only the selected fields are fetched from storage.",
	"Tags are shared between many posts.",
	"Each person writes between one and five posts.",
	"Counting ignores pagination but honours every filter.",
	"Backward pagination is not part of this server.",
	"Every page is ordered by primary key when no order is requested.",
}
