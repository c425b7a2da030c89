package prompt

import (
	"fmt"
	"strings"
)

// Lang selects the language of prompts sent to the model.
type Lang string

const (
	LangPT Lang = "pt-BR"
	LangEN Lang = "en"
)

// ParseLang falls back to Portuguese for anything unrecognised.
func ParseLang(s string) Lang {
	if strings.HasPrefix(strings.ToLower(s), "en") {
		return LangEN
	}
	return LangPT
}

// GetSystemPrompt provides strict directions and schema for JSON output.
// Providers without native schema support (OpenAI) send it as the system message.
func GetSystemPrompt() string {
	return `You are a fraud and phishing analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- riskLevel must be exactly one of: LOW, MEDIUM, HIGH.
- details is an array of short strings, each one finding or reason.
- All four fields are required.

Schema (example with empty values):
{
  "riskLevel": "<LOW|MEDIUM|HIGH>",
  "summary": "<string>",
  "details": ["<string>"],
  "recommendation": "<string>"
}`
}

// URL builds the instruction for a single URL.
func URL(lang Lang, url string) string {
	if lang == LangEN {
		return fmt.Sprintf(`Analyze the following URL for signs of being a fraudulent or phishing website: "%s".

Consider the domain structure, TLD, presence of suspicious keywords (e.g. 'login', 'secure', 'account', 'bank'), character usage (e.g. hyphens) and common phishing patterns. Provide a risk level (LOW, MEDIUM, HIGH), a short summary, a few points explaining your reasoning and a clear, actionable recommendation for the user.

The output must be only the JSON object described in the schema.`, url)
	}
	return fmt.Sprintf(`Analise a seguinte URL para sinais de ser um site fraudulento ou de phishing: "%s".

Considere a estrutura do domínio, TLD, presença de palavras-chave suspeitas (ex: 'login', 'secure', 'account', 'banco'), uso de caracteres (ex: hifens), e padrões comuns de phishing. Forneça um nível de risco (LOW, MEDIUM, HIGH), um resumo curto, alguns pontos explicando seu raciocínio, e uma recomendação clara e acionável para o usuário.

A saída deve ser apenas o objeto JSON descrito no schema.`, url)
}

// Text builds the instruction for pasted or uploaded text. The caller is
// responsible for capping the text length.
func Text(lang Lang, text string) string {
	if lang == LangEN {
		return fmt.Sprintf(`Analyze the following text for signs of being fraudulent or part of a phishing attempt.

Look for suspicious links, urgent requests for personal information (passwords, banking details), grammar mistakes, threatening language or offers that are too good to be true. Provide a risk level (LOW, MEDIUM, HIGH), a summary, points explaining your findings and a clear, actionable recommendation for the user.

Text to analyze: "%s"

The output must be only the JSON object described in the schema.`, text)
	}
	return fmt.Sprintf(`Analise o seguinte texto para sinais de ser fraudulento ou parte de uma tentativa de phishing.

Procure por links suspeitos, pedidos urgentes de informações pessoais (senhas, detalhes bancários), erros de gramática, linguagem ameaçadora ou ofertas que são boas demais para ser verdade. Forneça um nível de risco (LOW, MEDIUM, HIGH), um resumo, pontos explicando suas descobertas, e uma recomendação clara e acionável para o usuário.

Texto para analisar: "%s"

A saída deve ser apenas o objeto JSON descrito no schema.`, text)
}

// Image builds the instruction sent alongside a screenshot attachment.
func Image(lang Lang) string {
	if lang == LangEN {
		return `Analyze this screenshot of a website or message for signs of a fraud or phishing attempt.

Look for unusual logos, urgent warnings, suspicious input fields for sensitive information, typos, grammar mistakes or misleading URLs visible in the image. Provide a risk level (LOW, MEDIUM, HIGH), a summary, points explaining your findings and a clear, actionable recommendation for the user.

The output must be only the JSON object described in the schema.`
	}
	return `Analise esta captura de tela de um site ou mensagem para sinais de ser uma tentativa de fraude ou phishing.

Procure por logotipos incomuns, avisos urgentes, campos de entrada suspeitos para informações sensíveis, erros de digitação, erros gramaticais ou URLs enganosas visíveis na imagem. Forneça um nível de risco (LOW, MEDIUM, HIGH), um resumo, pontos explicando suas descobertas, e uma recomendação clara e acionável para o usuário.

A saída deve ser apenas o objeto JSON descrito no schema.`
}
