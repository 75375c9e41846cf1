package studio

// Message keys for user-facing errors. English is the contract language; the
// Indonesian strings follow the same wording.
const (
	msgNoImage       = "no_image"
	msgNoPrompt      = "no_prompt"
	msgExampleFailed = "example_failed"
	msgNoImageData   = "no_image_data"
)

var messages = map[string]map[string]string{
	"en": {
		msgNoImage:       "Please upload an image first.",
		msgNoPrompt:      "Please enter a prompt.",
		msgExampleFailed: "Could not load the example image.",
		msgNoImageData:   "No image data received from the model.",
	},
	"id": {
		msgNoImage:       "Silakan unggah gambar terlebih dahulu.",
		msgNoPrompt:      "Silakan masukkan prompt.",
		msgExampleFailed: "Gagal memuat gambar contoh.",
		msgNoImageData:   "Tidak ada data gambar dari model.",
	},
}

func message(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return messages["en"][key]
}
