package constant

// Knowledge-base document lifecycle states. "removed" is set by the
// deletion path outside this service and is never produced by ingestion.
const (
	KnowledgeStatusPending    = "pending"
	KnowledgeStatusProcessing = "processing"
	KnowledgeStatusProcessed  = "processed"
	KnowledgeStatusError      = "error"
	KnowledgeStatusRemoved    = "removed"
)

// ChunkInsertBatchSize caps rows per insert statement so a large document
// never exceeds backend payload limits.
const ChunkInsertBatchSize = 100
