package httpserver

import "github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"

// Error kinds returned in the "error" field of failed responses.
const (
	kindInvalidInput         = "invalid_input"
	kindAnalysisUnavailable  = "analysis_unavailable"
	kindInvalidResponseShape = "invalid_response_shape"
	kindNotFound             = "not_found"
	kindRateLimited          = "rate_limited"
	kindInternal             = "internal"
)

// Message keys beyond the bare kinds.
const (
	msgInvalidURL          = "invalid_input.url"
	msgInvalidText         = "invalid_input.text"
	msgInvalidFile         = "invalid_input.file"
	msgUnsupportedFileType = "invalid_input.file_type"
	msgFileTooLarge        = "invalid_input.file_size"
)

var messages = map[prompt.Lang]map[string]string{
	prompt.LangPT: {
		kindInvalidInput:         "Entrada inválida. Verifique os dados enviados.",
		msgInvalidURL:            "Por favor, insira uma URL válida (ex: exemplo.com).",
		msgInvalidText:           "Por favor, cole algum texto para verificar.",
		msgInvalidFile:           "Por favor, selecione um arquivo para verificar.",
		msgUnsupportedFileType:   "Tipo de arquivo não suportado. Por favor, envie uma imagem (jpeg, png, webp) ou arquivo de texto (txt, html).",
		msgFileTooLarge:          "O arquivo é grande demais para ser analisado.",
		kindAnalysisUnavailable:  "Falha ao analisar o conteúdo. Por favor, tente novamente mais tarde.",
		kindInvalidResponseShape: "Recebemos uma resposta inválida do serviço de análise.",
		kindNotFound:             "Item não encontrado no histórico.",
		kindRateLimited:          "Muitas verificações em pouco tempo. Aguarde um momento e tente novamente.",
		kindInternal:             "Ocorreu um erro inesperado. Por favor, tente novamente.",
	},
	prompt.LangEN: {
		kindInvalidInput:         "Invalid input. Please check what you sent.",
		msgInvalidURL:            "Please enter a valid URL (e.g. example.com).",
		msgInvalidText:           "Please paste some text to check.",
		msgInvalidFile:           "Please select a file to check.",
		msgUnsupportedFileType:   "Unsupported file type. Please upload an image (jpeg, png, webp) or a text file (txt, html).",
		msgFileTooLarge:          "The file is too large to be analyzed.",
		kindAnalysisUnavailable:  "Failed to analyze the content. Please try again later.",
		kindInvalidResponseShape: "We received an invalid response from the analysis service.",
		kindNotFound:             "Item not found in history.",
		kindRateLimited:          "Too many checks in a short time. Please wait a moment and try again.",
		kindInternal:             "Something went wrong. Please try again.",
	},
}

// message looks up key in lang, falling back to the bare kind and then to
// the Portuguese table.
func message(lang prompt.Lang, key, kind string) string {
	for _, l := range []prompt.Lang{lang, prompt.LangPT} {
		tbl := messages[l]
		if m, ok := tbl[key]; ok {
			return m
		}
		if m, ok := tbl[kind]; ok {
			return m
		}
	}
	return messages[prompt.LangPT][kindInternal]
}
