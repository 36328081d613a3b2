package coach

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Document keys in the input bundle. Each maps to <key>.txt in the data
// directory.
const (
	DocCompanyLeveling      = "company_leveling_document"
	DocProjectContributions = "project_contributions"
	DocManagerNotes         = "manager_notes"
	DocPerformanceReviews   = "performance_reviews"
	DocPeerFeedback         = "peer_feedback"
	DocSelfAssessment       = "self_assessment"
	DocProjectPipeline      = "project_pipeline"
	DocCompanyInitiatives   = "company_initiatives"
	DocTeamRoadmap          = "team_roadmap"
)

// DocumentKeys lists every expected document key.
var DocumentKeys = []string{
	DocCompanyLeveling,
	DocProjectContributions,
	DocManagerNotes,
	DocPerformanceReviews,
	DocPeerFeedback,
	DocSelfAssessment,
	DocProjectPipeline,
	DocCompanyInitiatives,
	DocTeamRoadmap,
}

// LoadDocuments reads the input bundle from dir. A missing file is tolerated
// and yields empty content; steps that need the document report the absence
// in their output instead of failing the run.
func LoadDocuments(dir string, logger *zap.Logger) (map[string]string, error) {
	docs := make(map[string]string, len(DocumentKeys))
	for _, key := range DocumentKeys {
		path := filepath.Join(dir, key+".txt")
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("document not found", zap.String("document", key))
				docs[key] = ""
				continue
			}
			return nil, fmt.Errorf("read document %s: %w", key, err)
		}
		docs[key] = string(raw)
	}
	return docs, nil
}
