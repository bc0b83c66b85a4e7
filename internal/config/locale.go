package config

import "strings"

// DefaultLanguage is used when the UI reports a language with no dedicated mapping.
const DefaultLanguage = "en"

// Locale describes one supported UI language: the speech-recognition tag,
// the natural-language name used in backend prompts and the canned strings
// the assistant falls back to when no backend is reachable.
type Locale struct {
	Language     string
	SpeechTag    string
	Name         string
	Greeting     string
	Fallback     string
	GiftRequest  string
	GiftFollowUp string
	Retry        string
	VoiceAlert   string
}

var locales = map[string]Locale{
	"en": {
		Language:     "en",
		SpeechTag:    "en-US",
		Name:         "English",
		Greeting:     "Hi! Need help finding something? I can search the store or suggest a gift.",
		Fallback:     "I'm offline right now, but you can browse by category or use the search bar to find products.",
		GiftRequest:  "Can you suggest a gift?",
		GiftFollowUp: "Happy to help with a gift! Who is it for, and what budget do you have in mind?",
		Retry:        "Sorry, something went wrong on my side. Let's try that again.",
		VoiceAlert:   "Voice input isn't available in this browser. Switching to text chat.",
	},
	"es": {
		Language:     "es",
		SpeechTag:    "es-ES",
		Name:         "Spanish",
		Greeting:     "¡Hola! ¿Te ayudo a encontrar algo? Puedo buscar en la tienda o sugerir un regalo.",
		Fallback:     "Ahora mismo estoy sin conexión, pero puedes navegar por categorías o usar el buscador.",
		GiftRequest:  "¿Me sugieres un regalo?",
		GiftFollowUp: "¡Con gusto te ayudo con un regalo! ¿Para quién es y qué presupuesto tienes?",
		Retry:        "Lo siento, algo salió mal. Intentémoslo de nuevo.",
		VoiceAlert:   "La entrada de voz no está disponible en este navegador. Cambiando al chat de texto.",
	},
	"fr": {
		Language:     "fr",
		SpeechTag:    "fr-FR",
		Name:         "French",
		Greeting:     "Bonjour ! Besoin d'aide ? Je peux chercher dans la boutique ou proposer un cadeau.",
		Fallback:     "Je suis hors ligne pour le moment, mais vous pouvez parcourir les catégories ou utiliser la recherche.",
		GiftRequest:  "Pouvez-vous me suggérer un cadeau ?",
		GiftFollowUp: "Avec plaisir pour un cadeau ! C'est pour qui, et quel budget envisagez-vous ?",
		Retry:        "Désolé, un problème est survenu. Réessayons.",
		VoiceAlert:   "La saisie vocale n'est pas disponible dans ce navigateur. Passage au chat texte.",
	},
	"de": {
		Language:     "de",
		SpeechTag:    "de-DE",
		Name:         "German",
		Greeting:     "Hallo! Kann ich helfen? Ich durchsuche den Shop oder schlage ein Geschenk vor.",
		Fallback:     "Ich bin gerade offline, aber du kannst nach Kategorien stöbern oder die Suche nutzen.",
		GiftRequest:  "Kannst du mir ein Geschenk vorschlagen?",
		GiftFollowUp: "Gerne helfe ich bei einem Geschenk! Für wen ist es und welches Budget hast du?",
		Retry:        "Entschuldigung, da ist etwas schiefgelaufen. Versuchen wir es noch einmal.",
		VoiceAlert:   "Spracheingabe ist in diesem Browser nicht verfügbar. Wechsel zum Text-Chat.",
	},
	"it": {
		Language:     "it",
		SpeechTag:    "it-IT",
		Name:         "Italian",
		Greeting:     "Ciao! Posso aiutarti? Cerco nel negozio o ti suggerisco un regalo.",
		Fallback:     "Al momento sono offline, ma puoi sfogliare le categorie o usare la ricerca.",
		GiftRequest:  "Mi suggerisci un regalo?",
		GiftFollowUp: "Volentieri! Per chi è il regalo e che budget hai in mente?",
		Retry:        "Scusa, qualcosa è andato storto. Riproviamo.",
		VoiceAlert:   "L'input vocale non è disponibile in questo browser. Passo alla chat testuale.",
	},
	"pt": {
		Language:     "pt",
		SpeechTag:    "pt-BR",
		Name:         "Portuguese",
		Greeting:     "Olá! Posso ajudar? Procuro na loja ou sugiro um presente.",
		Fallback:     "Estou offline agora, mas você pode navegar pelas categorias ou usar a busca.",
		GiftRequest:  "Pode sugerir um presente?",
		GiftFollowUp: "Claro! Para quem é o presente e qual é o seu orçamento?",
		Retry:        "Desculpe, algo deu errado. Vamos tentar de novo.",
		VoiceAlert:   "A entrada de voz não está disponível neste navegador. Mudando para o chat de texto.",
	},
	"ja": {
		Language:     "ja",
		SpeechTag:    "ja-JP",
		Name:         "Japanese",
		Greeting:     "こんにちは！商品探しやギフト選びをお手伝いします。",
		Fallback:     "現在オフラインです。カテゴリーや検索バーから商品を探せます。",
		GiftRequest:  "ギフトのおすすめはありますか？",
		GiftFollowUp: "ギフト選びをお手伝いします！どなたへの贈り物で、ご予算はどのくらいですか？",
		Retry:        "申し訳ありません、問題が発生しました。もう一度お試しください。",
		VoiceAlert:   "このブラウザでは音声入力を利用できません。テキストチャットに切り替えます。",
	},
	"zh": {
		Language:     "zh",
		SpeechTag:    "zh-CN",
		Name:         "Chinese",
		Greeting:     "你好！需要帮忙找商品或挑选礼物吗？",
		Fallback:     "我现在离线，您可以按分类浏览或使用搜索栏查找商品。",
		GiftRequest:  "能推荐一份礼物吗？",
		GiftFollowUp: "很乐意帮您挑礼物！是送给谁的？预算大概多少？",
		Retry:        "抱歉，出了点问题。我们再试一次。",
		VoiceAlert:   "此浏览器不支持语音输入，已切换到文字聊天。",
	},
}

// LookupLocale maps a UI language code ("es", "es-MX", "EN") onto its locale.
// Unknown languages resolve to the English baseline.
func LookupLocale(language string) Locale {
	lang := strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if l, ok := locales[lang]; ok {
		return l
	}
	return locales[DefaultLanguage]
}

// IsSupportedLanguage reports whether language has a dedicated mapping.
func IsSupportedLanguage(language string) bool {
	_, ok := locales[strings.ToLower(language)]
	return ok
}

// SupportedLanguages returns the language codes with a dedicated mapping.
func SupportedLanguages() []string {
	return []string{"en", "es", "fr", "de", "it", "pt", "ja", "zh"}
}
