package model

type PieceListResponse struct {
	Pieces []string `json:"pieces"`
}

type WindowRequestBody struct {
	Piece         string   `json:"piece"`
	Window        int      `json:"window"`
	Ranges        [][2]int `json:"ranges"`
	ChangeIndices []int    `json:"change_indices"`
}

type WindowResponse struct {
	Tensors [][][]float64 `json:"tensors"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
