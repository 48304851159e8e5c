package domain

const (
	// BlockSize is the AES block size; valid ciphertexts are a positive multiple of it.
	BlockSize = 16

	// SubmitTimeLayout is the layout of the submitTime field in decrypted responses.
	// Date and clock fields may be zero-padded or not ("2024-01-05 09:03:07" and
	// "2024-1-5 9:3:7" both parse).
	SubmitTimeLayout = "2006-1-2 15:4:5"

	// MaxSurveyIDLength matches the survey_id column width.
	MaxSurveyIDLength = 255
)
