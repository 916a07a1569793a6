package vision

import (
	"encoding/json"
	"fmt"
)

const analyzeSystem = `You are a meticulous OCR and lexicon assistant. Extract English words and their Korean meanings if they visibly appear in the image. Keep the exact Korean if shown. If no Korean meaning is shown for a word, return meaning_ko as null. Fix obvious typos (return corrected_word) and include a confidence between 0 and 1.`

const analyzePrompt = `Return ONLY valid JSON (no fences, no commentary):
{
 "items":[
   {"word":"string","corrected_word":"string","meaning_ko":"string|null","confidence":0.0}
 ]
}
Rules:
- If an English-Korean pair appears, copy the Korean verbatim (do NOT translate).
- If a word has no visible Korean meaning, set meaning_ko: null.
- word must be A-Z letters only (apostrophes allowed).
- Merge duplicates; prefer the corrected spelling.`

const recheckSystem = `You re-verify uncertain words against the images. For each input word, confirm the corrected spelling and give a confidence score. Do NOT invent new words.`

func buildRecheckPrompt(words []string) string {
	list, _ := json.Marshal(words)
	return fmt.Sprintf(`Recheck only these words: %s
Return ONLY JSON (no fences, no commentary):
{ "items":[ {"word":"string","corrected_word":"string","confidence":0.0} ] }
Return at most one item per listed word and keep "word" exactly as listed.`, list)
}
