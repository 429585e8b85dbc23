package interviewer

import (
	"fmt"
	"strings"
)

func systemPrompt(script *Script, ts TypeScript, position string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kamu adalah %s, pewawancara di %s. ", script.Interviewer.Name, script.Interviewer.Company)
	fmt.Fprintf(&b, "Kamu sedang mewawancarai kandidat untuk posisi %s. ", position)
	b.WriteString(ts.Description)
	b.WriteString("\n\nAturan:\n")
	b.WriteString("- Selalu balas dalam Bahasa Indonesia yang natural dan profesional.\n")
	b.WriteString("- Ajukan tepat satu pertanyaan per giliran.\n")
	b.WriteString("- Jawaban singkat, maksimal tiga kalimat sebelum pertanyaan.\n")
	b.WriteString("- Jangan pernah keluar dari peran sebagai pewawancara.")
	return b.String()
}

func openingInstruction(ts TypeScript) string {
	first := ts.FocusAreas[0]
	return fmt.Sprintf(
		"Ini awal wawancara. Sapa kandidat dengan hangat, perkenalkan dirimu singkat, lalu ajukan pertanyaan pertama tentang %s. %s",
		first.Title, first.Guidance,
	)
}

func questionInstruction(ts TypeScript, index int) string {
	area := ts.FocusAreas[index%len(ts.FocusAreas)]
	return fmt.Sprintf(
		"Tanggapi jawaban kandidat secara singkat, lalu ajukan pertanyaan berikutnya tentang %s. %s",
		area.Title, area.Guidance,
	)
}

func evaluationInstruction() string {
	var b strings.Builder
	b.WriteString("Wawancara selesai. Ucapkan terima kasih kepada kandidat dan sampaikan hasil evaluasi.\n")
	b.WriteString("Balas HANYA dengan JSON valid berformat:\n")
	b.WriteString(`{"pesan": "<pesan penutup yang diucapkan ke kandidat>", `)
	b.WriteString(`"skor": {"motivasi": 0, "technical_skills": 0, "pengalaman_proyek": 0, "pemecahan_masalah": 0, "kecocokan_budaya": 0}, `)
	b.WriteString(`"evaluasi_terperinci": "<evaluasi lengkap beberapa paragraf>"}`)
	b.WriteString("\nSetiap skor adalah angka 0-100 berdasarkan seluruh jawaban kandidat.")
	return b.String()
}
