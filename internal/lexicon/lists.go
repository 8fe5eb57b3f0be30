package lexicon

// Word lists used by the predicates. They are matched as lower-case
// substrings; changing an entry changes classification outcomes.

// authorExclusions disqualify a paragraph from being an author line.
var authorExclusions = []string{
	"университет", "институт", "кафедра", "доктор", "профессор", "доцент",
	"university", "institute", "department", "doctor", "professor",
	"аннотация", "abstract", "ключевые", "keywords", "факультет",
	"к.т.н", "д.т.н", "заведующий", "область", "город", "улица", "email", "@",
}

// authorInfoKeywords mark affiliation, degree and contact details.
var authorInfoKeywords = []string{
	"кафедра", "университет", "институт", "академия",
	"доктор", "профессор", "доцент", "аспирант",
	"факультет", "отделение", "лаборатория",
	"к.т.н", "д.т.н", "заведующий", "область", "город", "улица", "email", "@",
}

// titleIndicators are prepositions and articles; titles usually carry one.
var titleIndicators = []string{"the", "of", "in", "on", "for", "with", "by", "and", "or"}

// titleLocationWords are geographic or organisational words a title must not carry.
var titleLocationWords = []string{"russia", "moscow", "university", "institute", "academy", "center", "centre"}

var abstractIndicators = []string{
	"рассматривается", "представлен", "описан", "исследуется", "изучается",
	"анализируется", "предложен", "разработан", "получен", "показано",
	"presents", "describes", "analyzes", "studies", "investigates",
	"proposes", "develops", "demonstrates", "shows", "examines",
	"research", "study", "analysis", "investigation", "method",
	"approach", "results", "conclusion", "findings",
}

var structureWords = []string{
	"введение", "заключение", "выводы", "методы", "результаты",
	"обсуждение", "литература", "список", "библиография",
	"introduction", "conclusion", "methods", "results", "discussion",
}

// addressKeywords hold the address markers. The abbreviated forms keep their
// escaped spelling and are matched literally, so they only hit text that
// actually carries the backslash.
var addressKeywords = []string{`область`, `город`, `улица`, `дом`, `ул\.`, `г\.`, `д\.`}

var professionalKeywords = []string{
	"к.т.н", "д.т.н", "доктор", "кандидат", "профессор", "доцент",
	"заведующий", "кафедра", "университет", "институт",
}

var workplaceKeywords = []string{
	"university", "institute", "academy", "center", "centre",
	"department", "faculty", "school", "college", "laboratory",
	"company", "corporation", "ltd", "inc", "llc",
}

var workplaceLocations = []string{
	"russia", "moscow", "petersburg", "novomoskovsk", "usa", "uk",
	"germany", "france", "china", "japan", "street", "avenue", "road",
}

// Section markers consulted only by the full rule set.
var (
	KeywordMarkersRU  = []string{"ключевые слова"}
	KeywordMarkersEN  = []string{"keywords", "key words"}
	AbstractMarkersRU = []string{"аннотация", "статье"}
	AbstractMarkersEN = []string{"abstract", "article"}
)
