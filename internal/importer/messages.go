package importer

// User facing failure messages. Validation messages live next to the
// validation policy.
const (
	msgFetchFailed       = "We konden deze pagina niet ophalen. Controleer de link of probeer het later opnieuw."
	msgPageUnreadable    = "De inhoud van deze pagina kon niet worden gelezen."
	msgInvalidURL        = "Dit is geen geldige link."
	msgImageUnreachable  = "De afbeelding kon niet worden geladen. Probeer het opnieuw."
	msgNoTextInImage     = "We konden geen tekst in deze afbeelding vinden."
	msgUnsupportedSource = "Dit type import wordt niet ondersteund."
	msgUnsupportedVideo  = "Alleen video's van Instagram en TikTok worden ondersteund."
	msgVideoScrapeFailed = "We konden deze video niet ophalen. Controleer of de video openbaar is."
	msgVideoProcessing   = "De video kon niet worden verwerkt. Probeer het later opnieuw."
	msgMissingPhoto      = "Voeg een foto van het gerecht toe."
	msgPhotoAnalysis     = "De foto kon niet worden geanalyseerd. Probeer het opnieuw."
	msgThumbnailFailed   = "Er kon geen afbeelding voor dit recept worden gemaakt. Probeer het opnieuw."
	msgGeneric           = "Er ging iets mis bij het importeren van je recept. Probeer het later opnieuw."
	msgSaveFailed        = "Het recept kon niet worden opgeslagen. Probeer het later opnieuw."
)
