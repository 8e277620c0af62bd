package tiles

// Status is the on-disk state of a tile.
type Status int

// Tile statuses.
const (
	StatusQueued Status = iota
	StatusDownloaded
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return "queued"
	}
}

// Summary holds tile counts per status.
type Summary struct {
	Downloaded int `json:"downloaded"`
	NotFound   int `json:"not_found"`
	Error      int `json:"error"`
	Queued     int `json:"queued"`
}

func (s *Summary) add(st Status) {
	switch st {
	case StatusDownloaded:
		s.Downloaded++
	case StatusNotFound:
		s.NotFound++
	case StatusError:
		s.Error++
	default:
		s.Queued++
	}
}
