package provider

// Image is one uploaded word-list image handed to a recognition adapter.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// RecognizedItem is one structured record returned by a vision analyzer.
// Optional fields are nil when the model did not supply them.
type RecognizedItem struct {
	Word          string
	CorrectedWord *string
	MeaningKo     *string
	Confidence    *float64
}

// RecheckItem is one re-verified word returned by a rechecker.
type RecheckItem struct {
	Word          string
	CorrectedWord string
	Confidence    *float64
}

// Definition is the first sense found by a dictionary lookup.
type Definition struct {
	Word         string
	PartOfSpeech string
	Meaning      string
	Example      string
}
