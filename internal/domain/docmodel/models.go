package docmodel

import "time"

// Document identifies where a batch of chunks came from - an uploaded file
// name or the URL the PDF was fetched from. Source doubles as the index key,
// so repeated uploads of the same filename land in the same index.
type Document struct {
	Id          string    `json:"source_doc_id"`
	Source      string    `json:"source"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentType DocType   `json:"contentType"`
}

// DocChunk is the unit of embedding and retrieval. Immutable once persisted.
type DocChunk struct {
	Doc     Document
	ChunkId string `json:"chunk_id"`
	Content string `json:"content"`
	PageNum int    `json:"page_num"`
	Order   int    `json:"chunk_order"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)
