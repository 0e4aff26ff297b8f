package constant

import "strings"

// DocumentTypeOther is assigned when no folder in the corpus taxonomy
// matches the file path.
const DocumentTypeOther = "other"

// documentTypeByFolder maps corpus folder names (lowercased) to the
// document_type tag stored on every chunk of files found under them.
var documentTypeByFolder = map[string]string{
	"aged care act":                 "aged_care_act",
	"chsp":                          "chsp_support_at_home",
	"fee and subsidies":             "fees_and_subsidies",
	"home care package":             "home_care_package",
	"residential aged care funding": "residential_funding",
	"retirement village act":        "retirement_village_act",
	"strc":                          "strc_support_at_home",
	"support at home":               "support_at_home_program",
}

// DocumentTypeForPath derives the document type from a file path using the
// corpus folder taxonomy.
func DocumentTypeForPath(path string) string {
	normalized := strings.ToLower(path)
	for folder, docType := range documentTypeByFolder {
		if strings.Contains(normalized, folder) {
			return docType
		}
	}
	return DocumentTypeOther
}
