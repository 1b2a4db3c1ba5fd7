package catalog

// SeedStores provides the village marketplace stores.
func SeedStores() []Store {
	return []Store{
		{ID: "ratna-snack", Name: "Ratna Snack", Phone: "6281234567890", PaymentAccount: "BRI 1234-5678-90"},
		{ID: "dapur-asep", Name: "Dapur Asep", Phone: "6281234567891", PaymentAccount: "BCA 0987-6543-21"},
		{ID: "kopi-curug", Name: "Kopi Curug", Phone: "6281234567892", PaymentAccount: "MANDIRI 1111-2222-33"},
		{ID: "kebun-dewi", Name: "Kebun Dewi", Phone: "6281234567893", PaymentAccount: "COD ONLY"},
		{ID: "konveksi-maju", Name: "Konveksi Maju", Phone: "6281234567894", PaymentAccount: "BRI 5555-6666-77"},
		{ID: "pandai-besi-jaya", Name: "Pandai Besi Jaya", Phone: "6281234567895", PaymentAccount: "BCA 8888-9999-00"},
	}
}

// SeedProducts provides the products listed on the village marketplace.
func SeedProducts() []Product {
	return []Product{
		{ID: "1", StoreID: "ratna-snack", Name: "Keripik Pisang Manis", Price: 15000, Stock: 48, Category: "makanan", Status: StatusActive,
			Description: "Keripik pisang kepok pilihan dengan balutan gula aren asli. Renyah, manis, dan tanpa pengawet."},
		{ID: "2", StoreID: "dapur-asep", Name: "Abon Sapi Original", Price: 35000, Stock: 12, Category: "makanan", Status: StatusActive,
			Description: "Abon sapi asli kualitas premium. Cocok untuk lauk pauk praktis keluarga."},
		{ID: "3", StoreID: "kopi-curug", Name: "Kopi Bubuk Robusta", Price: 25000, Stock: 20, Category: "minuman", Status: StatusActive,
			Description: "Biji kopi robusta pilihan dari perkebunan lokal Curug Badak."},
		{ID: "4", StoreID: "kebun-dewi", Name: "Bayam Segar Ikat", Price: 5000, Stock: 20, Category: "sayur", Status: StatusActive,
			Description: "Sayur bayam organik segar, dipetik langsung saat ada pesanan."},
		{ID: "5", StoreID: "konveksi-maju", Name: "Kaos Sablon Desa", Price: 75000, Stock: 50, Category: "pakaian", Status: StatusActive,
			Description: "Kaos katun combed 30s dengan desain sablon khas desa wisata Curug Badak."},
		{ID: "6", StoreID: "pandai-besi-jaya", Name: "Cangkul Baja", Price: 120000, Stock: 5, Category: "peralatan", Status: StatusActive,
			Description: "Cangkul baja tempa tangan, kuat dan tajam."},
		{ID: "7", StoreID: "ratna-snack", Name: "Gula Aren Asli", Price: 18000, Stock: 30, Category: "makanan", Status: StatusActive,
			Description: "Gula aren murni tanpa campuran, wangi dan legit."},
		{ID: "8", StoreID: "kopi-curug", Name: "Jahe Merah Instan", Price: 20000, Stock: 15, Category: "minuman", Status: StatusActive,
			Description: "Minuman serbuk jahe merah instan, tinggal seduh."},
	}
}
