package model

// DownloadResult is the tagged outcome of fetching one image binary. Exactly
// one of Data or Err is meaningful.
type DownloadResult struct {
	Image Image
	Data  []byte
	Err   error
}

// OK reports whether the download succeeded.
func (r DownloadResult) OK() bool {
	return r.Err == nil
}

// ImageFile is a downloaded image ready to be attached to a chat reply.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// RecentImages is the result of a "last N" request. A single image is
// returned as Embed with no binary fetched; multiple images are returned as
// Files. Failed counts downloads that were dropped from Files.
type RecentImages struct {
	Embed  *Image
	Files  []ImageFile
	Failed int
}
