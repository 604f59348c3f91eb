package constants

// Retrieval and consolidation defaults. Chunk geometry follows the report
// splitter settings the rubric was tuned against.
const (
	DefaultChunkSize    = 1500  // characters per chunk
	DefaultChunkOverlap = 200   // characters shared between adjacent chunks
	DefaultTopK         = 5     // chunks retrieved per query
	DefaultContextChars = 18000 // consolidated context budget per track
	DefaultWorkerLimit  = 3     // concurrent retrieval queries per track
)

// NormalizedCeiling is the common scale every track is normalized onto.
const NormalizedCeiling = 10.0
