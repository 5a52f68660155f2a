package ledger

// UploadProgress tracks one upload batch. A single entry covers the whole
// batch; NoOfFiles records how many files it carries.
type UploadProgress struct {
	ID           string
	FileName     string
	Progress     int
	Error        bool
	ErrorMessage string
	Complete     bool
	NoOfFiles    int
	Path         string
}

func (e UploadProgress) entryID() string { return e.ID }
func (e UploadProgress) terminal() bool  { return e.Complete || e.Error }

// DownloadProgress tracks one download, possibly spanning several files when
// produced by a bulk zip download.
type DownloadProgress struct {
	ID                string
	FileName          string
	Progress          int
	CurrentFileNumber int
	TotalFileNumber   int
	Error             bool
	ErrorMessage      string
	Complete          bool
}

func (e DownloadProgress) entryID() string { return e.ID }
func (e DownloadProgress) terminal() bool  { return e.Complete || e.Error }

// TransferOperation labels the current phase of a bucket-to-bucket transfer.
type TransferOperation string

const (
	TransferDownload      TransferOperation = "Download"
	TransferEncryptUpload TransferOperation = "Encrypt & Upload"
)

// TransferProgress tracks one bucket-to-bucket transfer.
type TransferProgress struct {
	ID           string
	Operation    TransferOperation
	Progress     int
	Error        bool
	ErrorMessage string
	Complete     bool
}

func (e TransferProgress) entryID() string { return e.ID }
func (e TransferProgress) terminal() bool  { return e.Complete || e.Error }
