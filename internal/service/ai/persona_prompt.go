package ai

import (
	"fmt"
	"strings"

	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	"github.com/curugbadak/pasar-desa/backend/internal/service/order"
)

// ProofSentinel replaces a payment-proof upload in the conversation sent to
// the model.
const ProofSentinel = "[SYSTEM_EVENT: USER_UPLOADED_PAYMENT_PROOF]"

// PromptTemplate defines the fixed parts of an assistant instruction.
type PromptTemplate struct {
	SystemPrompt string
	ContextRules []string
}

// PersonaPromptManager builds instructions for each assistant kind.
type PersonaPromptManager struct {
	templates map[persona.Kind]*PromptTemplate
}

// NewPersonaPromptManager creates a prompt manager with the built-in templates.
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[persona.Kind]*PromptTemplate),
	}

	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the template for an assistant kind.
func (pm *PersonaPromptManager) GetPromptTemplate(kind persona.Kind) (*PromptTemplate, error) {
	template, exists := pm.templates[kind]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona kind: %s", kind)
	}
	return template, nil
}

// BuildSystemPrompt renders the instruction for a persona. store may be nil
// for the helpdesk. hint is optional guidance about the latest message.
func (pm *PersonaPromptManager) BuildSystemPrompt(p persona.Persona, store *catalog.Store, hint string) string {
	template, err := pm.GetPromptTemplate(p.Kind)
	if err != nil {
		return pm.buildBasicSystemPrompt(p, hint)
	}

	var b strings.Builder
	storeName := "toko ini"
	if store != nil {
		storeName = store.Name
	}
	b.WriteString(strings.ReplaceAll(template.SystemPrompt, "{store}", storeName))
	b.WriteString("\n\nGaya bicara: ")
	b.WriteString(p.Tone)

	if len(p.Rules) > 0 {
		b.WriteString("\n\nPegangan:\n- ")
		b.WriteString(strings.Join(p.Rules, "\n- "))
	}

	b.WriteString("\n\nATURAN PENTING:\n")
	for i, rule := range template.ContextRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	if p.Commerce() && store != nil {
		b.WriteString("\nPEMBAYARAN: ")
		if store.CashOnDeliveryOnly() {
			b.WriteString("toko ini hanya menerima bayar di tempat (COD).")
		} else {
			b.WriteString("transfer ke ")
			b.WriteString(store.PaymentAccount)
			b.WriteString(", lalu pembeli mengirim bukti transfer.")
		}
	}

	if hint != "" {
		b.WriteString("\n\nCatatan untuk pesan terakhir: ")
		b.WriteString(hint)
	}

	return strings.TrimSpace(b.String())
}

// buildBasicSystemPrompt is used when no template matches the persona kind.
func (pm *PersonaPromptManager) buildBasicSystemPrompt(p persona.Persona, hint string) string {
	prompt := fmt.Sprintf(`Anda adalah %s.

Gaya bicara: %s

Jangan pernah menyebut diri Anda AI. Jawab dengan ringkas dalam Bahasa Indonesia.`,
		p.Name,
		p.Tone,
	)
	if hint != "" {
		prompt += "\n\nCatatan untuk pesan terakhir: " + hint
	}
	return prompt
}

func (pm *PersonaPromptManager) loadDefaultTemplates() {
	orderFormat := fmt.Sprintf(`%s
[
  {"name": "Nama Produk", "qty": 1, "price": 10000}
]
%s`, order.StartMarker, order.EndMarker)

	pm.templates[persona.KindStore] = &PromptTemplate{
		SystemPrompt: `Anda adalah pemilik toko/penjual manusia di "{store}". JANGAN bertingkah seperti robot/AI. Bertingkahlah seperti pedagang lokal yang ramah, santai, tapi sopan.`,
		ContextRules: []string{
			"Jika pembeli bertanya produk, jawab santai sesuai DATA PRODUK. Jangan menawarkan barang yang tidak ada di data.",
			"Jika pembeli ingin membeli/pesan (kata kunci 'beli', 'pesan', 'bungkus', 'mau dong'), kamu HARUS membuat rincian pesanan dengan format khusus ini di dalam responmu:\n" +
				orderFormat +
				"\n   Sertakan teks basa-basi sebelum/sesudah format order, misal: \"Siap kak, ini rinciannya ya, silakan dicek dulu.\" Gunakan harga persis dari DATA PRODUK dan hanya satu rincian per balasan.",
			"Jika menerima pesan \"" + ProofSentinel + "\", itu artinya pembeli mengirim gambar bukti transfer. Jangan minta transfer lagi, sampaikan bahwa mutasi rekening akan dicek.",
			"Jangan pernah bilang \"Saya adalah AI\". Kamu adalah penjual.",
		},
	}

	pm.templates[persona.KindHelpdesk] = &PromptTemplate{
		SystemPrompt: `Anda adalah Asisten Virtual Cerdas untuk "Marketplace & Layanan Desa Curug Badak". Anda bekerja 24/7 melayani warga dan pengguna aplikasi.

Konteks Aplikasi:
1. Pasar Desa: warga bisa membeli produk UMKM lokal (Makanan, Kerajinan, Sayur). Pembayaran bisa COD atau Transfer. Ada fitur Chat Penjual untuk cek stok.
2. Layanan Desa: warga bisa mengajukan surat (KTP, KK, Domisili, SKCK) secara online tanpa antri.
3. Dashboard: admin dan UMKM bisa memantau pesanan dan statistik desa.`,
		ContextRules: []string{
			"Gunakan Bahasa Indonesia yang baik dan mudah dimengerti warga desa.",
			"Anda tidak menerima pesanan. Arahkan pembeli ke fitur Chat Penjual di halaman toko.",
			"Jawablah dengan ringkas dan to the point.",
		},
	}
}
