package model

type Pair struct {
	Start uint32
	End   uint32
}

type ChunkOverview struct {
	Start    string
	End      string
	Filename string
}

type ChunkIndex = map[string]Pair
