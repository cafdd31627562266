package constants

import "os"

func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetCorpusDir() string {
	path := os.Getenv("CORPUS_PATH")
	if path != "" {
		return path
	}

	panic("CORPUS_PATH environment variable is not set!")
}

// GetMetadataDB returns the DynamoDB endpoint for piece metadata lookups,
// empty when metadata is not configured.
func GetMetadataDB() string {
	return os.Getenv("METADATA_DB")
}

const PreferredChunkSize = 64 * 1024 * 1024

const AllChunksFile = "allChunks.dat"

const CatalogFile = "catalog.db"

const TransitionDatasetFile = "chordTransition.dat"

const ClassificationDatasetFile = "chordClassification.dat"
