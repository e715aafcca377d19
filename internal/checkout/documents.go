package checkout

// StoredFile is an uploaded document in the private bucket.
type StoredFile struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}

// QualifiedPath is the bucket-prefixed form handed to admins.
func (f StoredFile) QualifiedPath() string {
	return f.Bucket + "/" + f.Path
}

func (f StoredFile) present() bool {
	return f.Bucket != "" && f.Path != ""
}

// VerificationDocuments holds the two files collected at step 3. Only their
// presence is checked; content is never inspected.
type VerificationDocuments struct {
	NationalID        StoredFile `json:"nationalId"`
	SalaryCertificate StoredFile `json:"salaryCertificate"`
}

func (d VerificationDocuments) complete() bool {
	return d.NationalID.present() && d.SalaryCertificate.present()
}

func (d VerificationDocuments) files() []StoredFile {
	out := make([]StoredFile, 0, 2)
	for _, f := range []StoredFile{d.NationalID, d.SalaryCertificate} {
		if f.present() {
			out = append(out, f)
		}
	}
	return out
}
