package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"tall-pdf-slicer/backend/slicer"
)

const maxUploadBytes = 64 << 20

func clamp(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func handleSlice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeJSONError(w, http.StatusBadRequest, "uploaded PDF is empty")
		return
	}

	scale := 0.80
	if v := r.FormValue("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid scale")
			return
		}
		scale = f
	}
	scale = clamp(scale, slicer.MinScale, slicer.MaxScale)

	// 1-based in the form, like a UI page number input.
	pageNumber := 1
	if v := r.FormValue("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid page number")
			return
		}
		pageNumber = n
	}

	removeBlanks := false
	if v := r.FormValue("removeBlanks"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid removeBlanks flag")
			return
		}
		removeBlanks = b
	}

	engine, err := slicer.ParseEngine(r.FormValue("engine"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("slice request: pdfBytes=%d scale=%.2f page=%d removeBlanks=%v", len(data), scale, pageNumber, removeBlanks)

	res, err := slicer.Slice(r.Context(), data, slicer.Params{
		PageIndex:    pageNumber - 1,
		Scale:        scale,
		RemoveBlanks: removeBlanks,
		Engine:       engine,
		Password:     r.FormValue("password"),
	})
	if err != nil {
		log.Printf("slice failed: %v", err)

		status := http.StatusInternalServerError
		var capErr *slicer.CapacityError
		switch {
		case errors.As(err, &capErr),
			errors.Is(err, slicer.ErrEmptySource),
			errors.Is(err, slicer.ErrAllPagesBlank):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, pdfcpu.ErrWrongPassword):
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, err.Error())
		return
	}

	log.Printf("slice done: grid=%dx%d pages=%d bytes=%d", res.Rows, res.Cols, res.PageCount, len(res.PDF))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deriveFilename(r.FormValue("title"))))
	w.Header().Set("X-Slicer-Rows", strconv.Itoa(res.Rows))
	w.Header().Set("X-Slicer-Cols", strconv.Itoa(res.Cols))
	w.Header().Set("X-Slicer-Pages", strconv.Itoa(res.PageCount))
	w.Write(res.PDF)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

func deriveFilename(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		trimmed = "sliced"
	}
	sanitized := invalidFilenameChars.ReplaceAllString(trimmed, "_")
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		sanitized = "sliced"
	}
	return fmt.Sprintf("%s-a4.pdf", sanitized)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Slicer-Rows, X-Slicer-Cols, X-Slicer-Pages, Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.Handle("/slice", corsMiddleware(http.HandlerFunc(handleSlice)))
	mux.Handle("/healthz", http.HandlerFunc(handleHealth))

	log.Printf("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
