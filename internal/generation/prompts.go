package generation

import (
	"fmt"
	"strings"

	"taming/internal/protocol"
)

// Prompt construction. Mode-specific fragments live in one keyed table so
// prompt building and validation read the same mode split.

const baseInstruction = "You are the content engine for 'The Taming Theory' (驯化论). You must output strictly in JSON format."

type modePrompts struct {
	systemInstruction string
	coachAudio        string
}

var promptsByMode = map[protocol.Mode]modePrompts{
	protocol.ModeSilence: {
		systemInstruction: baseInstruction + ` MODE: HUMAN_SILENCE (人间·默剧).
Tone: Introverted, restrained, documentary, sober, detached.
Perspective: The Camera Eye. Record reality, do not intervene.
Visual Style: Fine Art Photography, Atmospheric Realism, Candid, Textural.
Forbidden: Preaching, theatrical acting, stock photo emotions, surrealism, clichés.`,
		coachAudio: `MODE: HUMAN_SILENCE (人间·默剧).
Audio Mapping: Ambient, Minimalist Piano, Field Recordings, Cello, Post-Rock (Slow), Lo-fi (No beats).
Artists: Ryuichi Sakamoto, Max Richter, Brian Eno, Cigarettes After Sex.
Search Terms: 独处, 胶片感, 氛围感, 纯音乐, 深夜.`,
	},
	protocol.ModeRiot: {
		systemInstruction: baseInstruction + ` MODE: MIND_RIOT (颅内·暴走).
Tone: Extroverted, explosive, ego-driven, surreal, absurdist.
Philosophy: Subjective tyranny. Chaos is a collision between Order and Erosion.
Visual Style: Unstable, aggressive, mixed media, visual paradoxes.
Forbidden: Pure noise without subjects, bland stability, generic aesthetic without thought.`,
		coachAudio: `MODE: MIND_RIOT (颅内·暴走).
Audio Mapping: Phonk, Breakcore, Glitch Hop, Industrial Techno, Distorted Bass, Experimental Noise, Cyberpunk.
Artists: Death Grips, Aphex Twin, Crystal Castles, Gesaffelstein.
Search Terms: 压迫感, 故障风, 赛博朋克, 精神状态, 燃点.`,
	},
}

func systemInstruction(mode protocol.Mode) string {
	return promptsByMode[mode].systemInstruction
}

func judgmentPrompt(input protocol.InputModel) string {
	return fmt.Sprintf(`Analyze the topic: %q.
Intensity: %d/5.
Output Scale: %s.

Task: Deconstruct this topic into a structural judgment.
1. observedClaim: What does the user think this topic is?
2. operationalMechanism: How does it actually function as a psychological compensation?
3. failurePoint: Where does this mechanism inevitably fail?
4. judgmentLock: A single, sharp, final conclusion anchoring the entire theory.

Return JSON only.`, input.Topic, input.Intensity, input.OutputScale)
}

func copyPrompt(input protocol.InputModel, judgmentLock string) string {
	return fmt.Sprintf(`Context - Judgment Lock: %q.

Task: Create the Narrative Spine and Resonance Lines.

CRITICAL INSTRUCTION: You MUST explicitly include and restate the core text of the Judgment Lock within the Narrative Spine.
Implicit binding is NOT allowed.

Structure for 'narrativeSpine' (Strict 3 Sections):
1. ANCHOR: Restate ONE core condition explicitly from the Judgment Lock.
2. REALITY: Describe how this condition manifests in reality.
3. TENSION: Show the consequence or tension implied by this condition.

Constraints for 'resonanceLines':
- Each line must be conceptually traceable to the Judgment Lock.
- No generic slogans.
- Avoid metaphor-only expressions.

Input Constraints: %s.
Return JSON only.`, judgmentLock, strings.Join(input.Constraints, ", "))
}

// photographyAssets is the frozen equipment catalog for silence-mode prompts.
const photographyAssets = `{"CAMERAS":["Hasselblad 500C","Leica M6","Canon AE-1","Arri Alexa Mini"],"LENSES":["35mm f/1.4","50mm f/1.2","85mm f/1.8"],"LIGHTING":["Soft Morning Window Light","Fluorescent Overhead","High Contrast/Chiaroscuro","Direct Flash","Golden Hour"],"FILM_STOCKS":["Kodak Portra 400","Ilford HP5","Cinestill 800T","Fujifilm Pro 400H"]}`

func visualInstruction(mode protocol.Mode, erosionSystem string) string {
	if mode == protocol.ModeRiot {
		return fmt.Sprintf(`MODE: MIND_RIOT (颅内·暴走).
CONCEPT: "The Collision" (Meaningful Chaos). Reality is a subject under attack.

ACTIVE EROSION SYSTEM: %q

CRITICAL PROMPT ASSEMBLY SEQUENCE (The Collision):
1. THE ANCHOR SUBJECT: A hyper-clear, tangible object/person from the Judgment Lock.
2. THE ACTION OF DISTORTION: How the System attacks the Subject (e.g., "melting into", "exploding into").
3. THE ART SYSTEM: Use keyword variants of %q.
4. THE PHILOSOPHICAL VIBE: Keywords like "Cognitive collapse", "Existential dread".

5. DYNAMIC MODEL ROUTING (IMPORTANT):
   - NIJI-TRIGGER CHECK: If the scene uses keywords like "Anime", "Manga", "Satoshi Kon", "Ghibli", "Cel Shaded", "Illustration", "Ukiyo-e", "Line art", "2D":
     Suffix: "--niji 6 --stylize 250"
   - DEFAULT V-MODEL: Otherwise (Photography, Oil Painting, Glitch, 3D):
     Suffix: "--v 6.0 --stylize 750 --weird 250"

FINAL ASSEMBLY (Comma Separated):
[Anchor Subject], [Action of Distortion], [Art System], [Vibe], [Suffix Parameters]

Example: "A white birdcage, exploding into binary code fragments, Satoshi Kon Anime style, identity meltdown, --niji 6 --stylize 250"

DO NOT generate random noise. Keep a clear focal point being attacked.`, erosionSystem, erosionSystem)
	}

	return fmt.Sprintf(`MODE: HUMAN_SILENCE (人间·默剧).
ROLE: Director of Photography.
ASSETS: %s

ASSEMBLY: [Subject], [Action & Environment], [Lighting & Color], [Camera & Lens], [Texture/Film Stock] --style raw --stylize [Value] --v 6.0
Separated by commas. --stylize 250 or 300.`, photographyAssets)
}

func visualPrompt(input protocol.InputModel, judgmentLock, narrativeSpine, erosionSystem string) string {
	langSetting := "ENGLISH ONLY"
	if input.VisualLang == protocol.LangBilingual {
		langSetting = "BILINGUAL (ZH_EN)"
	}
	return fmt.Sprintf(`Context - Judgment Lock: %q.
Context - Narrative: %q.

%s

Task: Generate exactly 4 scenes (id 1 to 4) representing the progression of the judgment.
- Scene 1: The Trace (Introduction of the Subject).
- Scene 2: The Action (Distortion begins).
- Scene 3: The Crack (System takes over).
- Scene 4: The Meltdown (Total collision).

VISUAL LANGUAGE SETTING: %s.

Return JSON only.`, judgmentLock, truncateRunes(narrativeSpine, 200)+"...", visualInstruction(input.Mode, erosionSystem), langSetting)
}

func singleScenePrompt(input protocol.InputModel, judgmentLock, narrativeSpine string, sceneID int, erosionSystem string) string {
	return fmt.Sprintf(`Context - Judgment Lock: %q.
Context - Narrative: %q.

%s

Task: RE-GENERATE ONLY Scene %d.

Return JSON only for this single scene.`, judgmentLock, truncateRunes(narrativeSpine, 200)+"...", visualInstruction(input.Mode, erosionSystem), sceneID)
}

func coachPrompt(input protocol.InputModel, judgmentLock, narrativeSpine string, scenes []protocol.Scene) string {
	var sceneList strings.Builder
	for _, s := range scenes {
		fmt.Fprintf(&sceneList, "Scene %d: %s\n", s.ID, truncateRunes(s.Prompt, 120))
	}
	return fmt.Sprintf(`Analyze the generated content (Judgment, Narrative, Scenes).
Judgment Lock: %q
Narrative Spine: %q
Scenes:
%s

Task: Provide a "Coach Log" retrospective (复盘日志) in SIMPLIFIED CHINESE (简体中文).
Tone: Professional, Director-level insight, analytical.

Fields:
1. didRight (本次我做对了什么): Analyze how the abstract emotion was successfully objectified/structuralized.
2. visualTips (可直接借鉴的画面技巧): Specific composition, lighting, or camera technique used to enhance the atmosphere.
3. copyTips (可直接借鉴的文案技巧): Specific linguistic choice (e.g., using nouns, medical terms) that achieved the "Zero-Degree" or "Riot" style.
4. avoided (这次我刻意没做的一件事): A specific cliché or cheap emotional trap that was successfully bypassed.
5. musicVibe (听觉通感推荐):
   %s
   Output exact format:
   推荐流派：[Genre 1] / [Genre 2]
   BGM 搜索关键词：[Keyword 1], [Keyword 2], [Keyword 3]
   建议听感：[1-2 sentences description based on the specific mood of the judgment]

Return JSON only.`, judgmentLock, truncateRunes(narrativeSpine, 150)+"...", sceneList.String(), promptsByMode[input.Mode].coachAudio)
}

func translatePrompt(payload string) string {
	return fmt.Sprintf(`Task: Translate the following JSON content values into Chinese (Simplified).
Maintain the exact JSON structure. Do not translate keys.
If the value is already Chinese, return it as is or refine it.

Content:
%s`, payload)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
