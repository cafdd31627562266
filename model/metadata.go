package model

type PieceMetadata struct {
	Composer string
	Title    string
	Year     uint
}
