package ledger

import "time"

// Uploads is the ledger of in-flight upload batches.
type Uploads struct {
	s *store[UploadProgress]
}

func NewUploads() *Uploads { return &Uploads{s: newStore[UploadProgress]()} }

func (u *Uploads) Add(e UploadProgress) { u.s.add(e) }

func (u *Uploads) SetProgress(id string, progress int) {
	u.s.transition(id, func(e *UploadProgress) { e.Progress = progress })
}

func (u *Uploads) MarkComplete(id string) {
	u.s.transition(id, func(e *UploadProgress) {
		e.Complete = true
		e.Progress = 100
	})
}

func (u *Uploads) MarkError(id, message string) {
	u.s.transition(id, func(e *UploadProgress) {
		e.Error = true
		e.ErrorMessage = message
	})
}

func (u *Uploads) Remove(id string)                              { u.s.remove(id) }
func (u *Uploads) ScheduleRemove(id string, delay time.Duration) { u.s.scheduleRemove(id, delay) }
func (u *Uploads) Get(id string) (UploadProgress, bool)          { return u.s.get(id) }
func (u *Uploads) Snapshot() []UploadProgress                    { return u.s.snapshot() }
func (u *Uploads) Count() int                                    { return u.s.count() }

// Downloads is the ledger of in-flight downloads.
type Downloads struct {
	s *store[DownloadProgress]
}

func NewDownloads() *Downloads { return &Downloads{s: newStore[DownloadProgress]()} }

func (d *Downloads) Add(e DownloadProgress) { d.s.add(e) }

// SetProgress updates progress together with the file counters so a reader
// never sees the percentage of one file against the name of another.
func (d *Downloads) SetProgress(id string, progress int, fileName string, currentFileNumber int) {
	d.s.transition(id, func(e *DownloadProgress) {
		e.Progress = progress
		e.FileName = fileName
		e.CurrentFileNumber = currentFileNumber
	})
}

func (d *Downloads) MarkComplete(id string) {
	d.s.transition(id, func(e *DownloadProgress) {
		e.Complete = true
		e.Progress = 100
	})
}

func (d *Downloads) MarkError(id, message string) {
	d.s.transition(id, func(e *DownloadProgress) {
		e.Error = true
		e.ErrorMessage = message
	})
}

func (d *Downloads) Remove(id string)                              { d.s.remove(id) }
func (d *Downloads) ScheduleRemove(id string, delay time.Duration) { d.s.scheduleRemove(id, delay) }
func (d *Downloads) Get(id string) (DownloadProgress, bool)        { return d.s.get(id) }
func (d *Downloads) Snapshot() []DownloadProgress                  { return d.s.snapshot() }
func (d *Downloads) Count() int                                    { return d.s.count() }

// Transfers is the ledger of in-flight bucket-to-bucket transfers.
type Transfers struct {
	s *store[TransferProgress]
}

func NewTransfers() *Transfers { return &Transfers{s: newStore[TransferProgress]()} }

func (t *Transfers) Add(e TransferProgress) { t.s.add(e) }

func (t *Transfers) SetProgress(id string, progress int) {
	t.s.transition(id, func(e *TransferProgress) { e.Progress = progress })
}

func (t *Transfers) SetOperation(id string, op TransferOperation) {
	t.s.transition(id, func(e *TransferProgress) { e.Operation = op })
}

func (t *Transfers) MarkComplete(id string) {
	t.s.transition(id, func(e *TransferProgress) {
		e.Complete = true
		e.Progress = 100
	})
}

func (t *Transfers) MarkError(id, message string) {
	t.s.transition(id, func(e *TransferProgress) {
		e.Error = true
		e.ErrorMessage = message
	})
}

func (t *Transfers) Remove(id string)                              { t.s.remove(id) }
func (t *Transfers) ScheduleRemove(id string, delay time.Duration) { t.s.scheduleRemove(id, delay) }
func (t *Transfers) Get(id string) (TransferProgress, bool)        { return t.s.get(id) }
func (t *Transfers) Snapshot() []TransferProgress                  { return t.s.snapshot() }
func (t *Transfers) Count() int                                    { return t.s.count() }
