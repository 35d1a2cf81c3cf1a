package generation

import "math/rand"

// ErosionSystems is the fixed catalog of stylistic descriptors injected into
// riot-mode visual prompts. One is picked pseudo-randomly per visual phase.
var ErosionSystems = []string{
	"Glitch Art / Datamoshing (Digital decay and reality corruption)",
	"Liquid Melting / Dali Surrealism (Melting of state and form)",
	"Fragmentation / Cubism (Shattering of perspectives and geometry)",
	"Negative Film / X-Ray (Internal inversion and skeletal truth)",
	"Thermal Imaging / Predator Vision (Dehumanization and heat maps)",
	"Low-Poly / Wireframe (Reduction to artificial infrastructure)",
	"Junji Ito Spiral Patterns (Inward compulsion and geometric madness)",
	"Satoshi Kon Psychological Anime style (Hallucinatory 2D, fragmented identity)",
	"Ukiyo-e Woodblock Print (Traditional Japanese 2D illustration, flattening of reality)",
	"Cybernetic Manga / Line art style (Futuristic precision and artificiality)",
	"Neon Acid Psychedelia (Over-stimulation and sensory burn)",
}

// ErosionPicker selects an erosion system. Injectable so tests can pin the
// selection; production wiring uses a real entropy source.
type ErosionPicker func() string

// NewErosionPicker returns a picker backed by the given random source.
// A nil source falls back to the global one.
func NewErosionPicker(rng *rand.Rand) ErosionPicker {
	if rng == nil {
		return func() string {
			return ErosionSystems[rand.Intn(len(ErosionSystems))]
		}
	}
	return func() string {
		return ErosionSystems[rng.Intn(len(ErosionSystems))]
	}
}
