package api

// GJSON paths for extracting values from Gemini stream chunks.
// These centralize the positional indices of the wire format.
const (
	// Chunk body paths - each streamed line wraps a JSON-encoded body at
	// index 2 of the envelope entry
	PathBody      = "2"
	PathCandList  = "4"
	PathMetadata  = "1"
	PathErrorCode = "0.5.2.0.1.0"

	// Alternative error path - used when the API returns the short error
	// format [["wrb.fr",null,null,null,null,[3]],...]
	PathAltErrorCode = "0.5.0"

	// Candidate paths (relative to candidate object)
	PathCandRCID     = "0"
	PathCandText     = "1.0"
	PathCandTextAlt  = "22.0"
	PathCandThoughts = "37.0.0"
)
