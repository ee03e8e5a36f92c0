package openai

import "fmt"

type openaiVoice string

const (
	VoiceAlloy   openaiVoice = "alloy"
	VoiceAsh     openaiVoice = "ash"
	VoiceCoral   openaiVoice = "coral"
	VoiceEcho    openaiVoice = "echo"
	VoiceFable   openaiVoice = "fable"
	VoiceNova    openaiVoice = "nova"
	VoiceOnyx    openaiVoice = "onyx"
	VoiceSage    openaiVoice = "sage"
	VoiceShimmer openaiVoice = "shimmer"

	defaultVoice = VoiceAlloy
)

// ParseVoice maps a voice name to its typed value.
func ParseVoice(name string) (openaiVoice, error) {
	for _, voice := range GetAvailableVoices() {
		if string(voice) == name {
			return voice, nil
		}
	}
	return "", fmt.Errorf("unknown voice %q", name)
}

func GetAvailableVoices() []openaiVoice {
	return []openaiVoice{
		VoiceAlloy,
		VoiceAsh,
		VoiceCoral,
		VoiceEcho,
		VoiceFable,
		VoiceNova,
		VoiceOnyx,
		VoiceSage,
		VoiceShimmer,
	}
}
