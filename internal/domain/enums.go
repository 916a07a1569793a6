package domain

// Source tags the provenance of an Entry.
type Source string

const (
	SourceImageOCR Source = "image-ocr"
	SourceImageAI  Source = "image-ai"
)

func (s Source) String() string { return string(s) }

func (s Source) IsValid() bool {
	switch s {
	case SourceImageOCR, SourceImageAI:
		return true
	}
	return false
}

// CaseMode controls how the line parser normalizes candidate words.
type CaseMode string

const (
	CaseLower CaseMode = "lower"
	CaseUpper CaseMode = "upper"
	CaseNone  CaseMode = "none"
)

func (m CaseMode) String() string { return string(m) }

func (m CaseMode) IsValid() bool {
	switch m {
	case CaseLower, CaseUpper, CaseNone:
		return true
	}
	return false
}

// RecognitionMode selects which recognition adapter feeds the pipeline.
type RecognitionMode string

const (
	ModeLocal  RecognitionMode = "local"
	ModeRemote RecognitionMode = "remote"
)

func (m RecognitionMode) String() string { return string(m) }

func (m RecognitionMode) IsValid() bool {
	switch m {
	case ModeLocal, ModeRemote:
		return true
	}
	return false
}

// Layout is a printable document layout.
type Layout string

const (
	LayoutList       Layout = "list"
	LayoutFlashcards Layout = "flashcards"
	LayoutWorksheet  Layout = "worksheet"
)

func (l Layout) String() string { return string(l) }

func (l Layout) IsValid() bool {
	switch l {
	case LayoutList, LayoutFlashcards, LayoutWorksheet:
		return true
	}
	return false
}
