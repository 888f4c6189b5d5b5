package constants

// Viewer constants
const (
	// DefaultViewerID is the portfolio owner used when a request names none
	DefaultViewerID = "vc-1"
)

// Ingestion constants
const (
	// BaselineYear is the start period assumed when a work-history entry has none
	BaselineYear = "2020"

	// PersonIDPrefix prefixes generated person identifiers
	PersonIDPrefix = "person-"
	// PersonIDLength is the nanoid length of the random part of a person id
	PersonIDLength = 8

	// CompanyNodePrefix prefixes company node ids in exchanged graphs
	CompanyNodePrefix = "company-"
)

// Relationship types as they appear on exchanged links and in Neo4j
const (
	RelWorksAt     = "WORKS_AT"
	RelWorkedAt    = "WORKED_AT"
	RelConnectedTo = "CONNECTED_TO"
	RelAttending   = "ATTENDING"
	RelInterested  = "INTERESTED_IN"
)

// Search constants
const (
	// DefaultSearchLimit caps search results when the caller gives no limit
	DefaultSearchLimit = 10
)
