package domain

import "fmt"

const DefaultBucket = "court-images"

// Upload is one file of a batch submitted together.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FileResult is the outcome of depositing one file of a batch.
type FileResult struct {
	Index    int // 1-based position in the batch
	Filename string
	Key      string
	URL      string // empty when the upload failed
	Err      error
}

func (r FileResult) OK() bool { return r.Err == nil }

type BatchResult struct {
	Bucket string
	Files  []FileResult
}

// URLs returns the public URLs of the files that were stored, in batch order.
func (b BatchResult) URLs() []string {
	var out []string
	for _, f := range b.Files {
		if f.OK() {
			out = append(out, f.URL)
		}
	}
	return out
}

func (b BatchResult) Failed() int {
	n := 0
	for _, f := range b.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}

func (b BatchResult) Warnings() []string {
	var out []string
	for _, f := range b.Files {
		if !f.OK() {
			out = append(out, fmt.Sprintf("failed to upload %s: %v", f.Filename, f.Err))
		}
	}
	return out
}
