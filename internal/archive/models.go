package archive

// Conversion is the metadata of one archived document. The parsed records
// themselves are never stored; only the rendered document (in the blob store)
// and this summary.
type Conversion struct {
	ID          string `json:"id"`
	Format      string `json:"format"`   // docx|qti|json
	Filename    string `json:"filename"` // download name, e.g. MCQ_Output.docx
	BlobKey     string `json:"blob_key"`
	InputSHA256 string `json:"input_sha256"`
	Questions   int    `json:"questions"`
	Bytes       int64  `json:"bytes"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}
