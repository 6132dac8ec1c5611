package memdrive

import "github.com/datatug/drivetug/pkg/drives"

// NewDemo returns a small sample drive used by the --demo flag.
func NewDemo(o ...Option) *Drive {
	o = append([]Option{WithAccount(drives.Account{Email: "demo@example.com", DisplayName: "Demo User"})}, o...)
	d := New("My Drive", o...)
	d.AddFolder("photos", "Photos", RootID)
	d.AddFolder("photos-2024", "2024", "photos")
	d.AddFolder("photos-2025", "2025", "photos")
	d.AddFolder("photos-2025-summer", "Summer", "photos-2025")
	d.AddFolder("work", "Work", RootID)
	d.AddFolder("work-reports", "Reports", "work")
	d.AddFolder("work-archive", "archive", "work")
	d.AddFolder("music", "Music", RootID)
	d.AddFile("notes", "notes.txt", "text/plain", RootID)
	d.AddFile("report-q1", "Q1.pdf", "application/pdf", "work-reports")
	return d
}
