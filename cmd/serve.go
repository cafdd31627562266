package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/jsphweid/harmalign/catalog"
	"github.com/jsphweid/harmalign/chunk"
	"github.com/jsphweid/harmalign/constants"
	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/piece"
	"github.com/jsphweid/harmalign/rhythm"
	"github.com/jsphweid/harmalign/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var allChunks []model.ChunkOverview
var serveCatalog *catalog.Client

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves built pieces over HTTP",
	Long:  `serves built pieces over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// LoadServeFiles loads the chunk overviews and catalog the handlers need.
// Exported for the e2e test.
func LoadServeFiles() {
	allChunks = util.ReadBinaryOrPanic[[]model.ChunkOverview](
		filepath.Join(constants.GetIndexDir(), constants.AllChunksFile))

	var err error
	serveCatalog, err = catalog.Open(filepath.Join(constants.GetIndexDir(), constants.CatalogFile))
	if err != nil {
		panic("Could not open catalog: " + err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func findPiece(name string) (*piece.ScorePiece, error) {
	payload, err := chunk.Find(allChunks, name)
	if err != nil || payload == nil {
		return nil, err
	}
	measures, err := rhythm.MeasuresFromData(payload.Measures)
	if err != nil {
		return nil, err
	}
	return piece.FromData(payload.Piece, measures)
}

func HandlePieces(w http.ResponseWriter, r *http.Request) {
	recs, err := serveCatalog.AllPieces()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	res := model.PieceListResponse{Pieces: make([]string, 0, len(recs))}
	for _, rec := range recs {
		res.Pieces = append(res.Pieces, rec.Name)
	}
	json.NewEncoder(w).Encode(res)
}

func HandleGetPiece(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	payload, err := chunk.Find(allChunks, name)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if payload == nil {
		writeError(w, 404, fmt.Sprintf("no piece named %v", name))
		return
	}
	json.NewEncoder(w).Encode(payload.Piece)
}

func HandleWindow(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.WindowRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeError(w, 400, "could not unmarshal request body: "+err.Error())
		return
	}

	p, err := findPiece(input.Piece)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if p == nil {
		writeError(w, 404, fmt.Sprintf("no piece named %v", input.Piece))
		return
	}

	// nil ranges means the piece's own ground-truth chords
	tensors, err := p.ChordNoteInputs(input.Window, input.Ranges, input.ChangeIndices)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	json.NewEncoder(w).Encode(model.WindowResponse{Tensors: tensors})
}

// NewRouter wires the piece endpoints. Exported for the e2e test.
func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/pieces", HandlePieces).Methods("GET")
	router.HandleFunc("/pieces/{name:.*}", HandleGetPiece).Methods("GET")
	router.HandleFunc("/window", HandleWindow).Methods("POST")
	return router
}

func serve() {
	LoadServeFiles()
	handler := cors.Default().Handler(NewRouter())
	log.Fatal(http.ListenAndServe(":8080", handler))
}
