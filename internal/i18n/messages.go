// Package i18n holds the user-facing message catalog and locale matching.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Key identifies a catalog message.
type Key string

const (
	MsgURLRequired         Key = "url_required"
	MsgInvalidURL          Key = "invalid_url"
	MsgInvalidFormat       Key = "invalid_format"
	MsgInvalidPayload      Key = "invalid_payload"
	MsgUnsupportedPlatform Key = "unsupported_platform"
	MsgDownloadNotFound    Key = "download_not_found"
	MsgNotReady            Key = "not_ready"
	MsgStartFailed         Key = "start_failed"
	MsgValidateFailed      Key = "validate_failed"
	MsgStreamFailed        Key = "stream_failed"
	MsgFileMissing         Key = "file_missing"

	MsgMetadataFailed Key = "metadata_failed"
	MsgProbeFailed    Key = "probe_failed"
	MsgSaveFailed     Key = "save_failed"
	MsgProtected      Key = "protected"
	MsgUnavailable    Key = "unavailable"
	MsgPrivate        Key = "private"
	MsgLoginRequired  Key = "login_required"
	MsgUnsupportedURL Key = "unsupported_url"
	MsgUnknown        Key = "unknown"
)

var (
	English = language.English
	French  = language.French

	supported = []language.Tag{English, French}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[language.Tag]map[Key]string{
	English: {
		MsgURLRequired:         "URL is required",
		MsgInvalidURL:          "Please enter a valid URL",
		MsgInvalidFormat:       "Please select a format",
		MsgInvalidPayload:      "Invalid request payload",
		MsgUnsupportedPlatform: "This platform is not supported.",
		MsgDownloadNotFound:    "Download not found",
		MsgNotReady:            "Download not ready",
		MsgStartFailed:         "Failed to start download",
		MsgValidateFailed:      "Failed to validate URL",
		MsgStreamFailed:        "Failed to stream file",
		MsgFileMissing:         "File not found",
		MsgMetadataFailed:      "Could not get the video information. The URL may be invalid or the video unavailable.",
		MsgProbeFailed:         "Error while validating the URL. Please try again.",
		MsgSaveFailed:          "The file could not be saved. Please try again.",
		MsgProtected:           "YouTube error: the video may be protected or the URL invalid. Please try again.",
		MsgUnavailable:         "This video is not available for download.",
		MsgPrivate:             "This video is private and cannot be downloaded.",
		MsgLoginRequired:       "This video requires signing in and cannot be downloaded.",
		MsgUnsupportedURL:      "This URL is not supported by the downloader.",
		MsgUnknown:             "An unknown error occurred",
	},
	French: {
		MsgURLRequired:         "L'URL est requise",
		MsgInvalidURL:          "Veuillez saisir une URL valide",
		MsgInvalidFormat:       "Veuillez sélectionner un format",
		MsgInvalidPayload:      "Requête invalide",
		MsgUnsupportedPlatform: "Cette plateforme n'est pas supportée.",
		MsgDownloadNotFound:    "Téléchargement introuvable",
		MsgNotReady:            "Téléchargement pas encore prêt",
		MsgStartFailed:         "Impossible de démarrer le téléchargement",
		MsgValidateFailed:      "Impossible de valider l'URL",
		MsgStreamFailed:        "Impossible de diffuser le fichier",
		MsgFileMissing:         "Fichier introuvable",
		MsgMetadataFailed:      "Impossible d'obtenir les informations de la vidéo. L'URL pourrait être invalide ou la vidéo indisponible.",
		MsgProbeFailed:         "Erreur lors de la validation de l'URL. Veuillez réessayer.",
		MsgSaveFailed:          "Le fichier n'a pas pu être enregistré. Veuillez réessayer.",
		MsgProtected:           "Erreur YouTube: La vidéo pourrait être protégée ou l'URL invalide. Veuillez réessayer.",
		MsgUnavailable:         "Cette vidéo n'est pas disponible pour le téléchargement.",
		MsgPrivate:             "Cette vidéo est privée et ne peut pas être téléchargée.",
		MsgLoginRequired:       "Cette vidéo nécessite une connexion et ne peut pas être téléchargée.",
		MsgUnsupportedURL:      "Cette URL n'est pas prise en charge.",
		MsgUnknown:             "Une erreur inconnue s'est produite",
	},
}

// Match picks the closest supported locale for the given preferences
// (BCP 47 tags or Accept-Language values). Empty input yields "".
func Match(prefs ...string) string {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return supported[idx].String()
}

// Normalize maps any locale string to a supported one, defaulting to English.
func Normalize(locale string) string {
	if m := Match(locale); m != "" {
		return m
	}
	return English.String()
}

// T returns the message for key in locale, falling back to English.
func T(locale string, key Key) string {
	tag := language.Make(Normalize(locale))
	if msgs, ok := catalog[tag]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[English][key]; ok {
		return msg
	}
	return string(key)
}
