package intent

import "strings"

// Label is the coarse purpose of a buyer message.
type Label string

const (
	Neutral  Label = "neutral"
	Purchase Label = "purchase"
	Inquiry  Label = "inquiry"
	Payment  Label = "payment"
	Greeting Label = "greeting"
)

// Decision carries the winning label and its keyword score.
type Decision struct {
	Label Label
	Score int
}

// Strong reports whether the decision is backed by more than one keyword.
func (d Decision) Strong() bool {
	return d.Score >= 6
}

var keywordBuckets = map[Label][]string{
	Purchase: {
		"beli", "pesan", "order", "bungkus", "mau dong", "ambil", "checkout", "keranjang", "borong",
		"mau yang", "saya mau", "aku mau", "tambah", "jadi beli",
	},
	Inquiry: {
		"berapa", "harga", "stok", "ready", "ada ga", "ada gak", "ada nggak", "apa saja", "rekomendasi",
		"bagaimana", "gimana", "cara", "kapan", "ukuran", "rasa", "tahan berapa lama",
	},
	Payment: {
		"transfer", "tf", "bayar", "rekening", "cod", "bukti", "lunas", "sudah kirim", "udah kirim", "mutasi",
	},
	Greeting: {
		"halo", "hai", "permisi", "assalamualaikum", "selamat pagi", "selamat siang", "selamat sore",
		"selamat malam", "punten", "kak",
	},
}

// precedence breaks score ties; purchase wins because it carries the most
// protocol weight.
var precedence = []Label{Purchase, Payment, Inquiry, Greeting}

// Analyze scores a buyer message against the keyword buckets.
func Analyze(message string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(message))
	if normalized == "" {
		return Decision{Label: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if containsWord(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if strings.Contains(message, "?") {
		scores[Inquiry] += 2
	}

	best := Decision{Label: Neutral}
	for _, label := range precedence {
		if s := scores[label]; s > best.Score {
			best = Decision{Label: label, Score: s}
		}
	}
	return best
}

// containsWord matches keyword on word boundaries so "tf" does not fire
// inside unrelated words.
func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		if boundary(text, start-1) && boundary(text, end) {
			return true
		}
		idx = start + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// Hint renders the decision as prompt guidance for the assistant.
func Hint(d Decision) string {
	switch d.Label {
	case Purchase:
		return "Pembeli tampak ingin memesan. Jika barangnya jelas, buat rincian pesanan dengan format khusus."
	case Inquiry:
		return "Pembeli sedang bertanya. Jawab sesuai data produk tanpa membuat rincian pesanan."
	case Payment:
		return "Pembeli membahas pembayaran. Jelaskan cara bayar sesuai rekening toko."
	case Greeting:
		return "Pembeli menyapa. Balas dengan ramah dan tawarkan bantuan."
	default:
		return ""
	}
}
