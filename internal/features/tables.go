package features

// Keyword dictionaries and TLD tables used by the extractor. These are part
// of the ML contract: the training pipeline used the same sets, so entries
// must not be edited without retraining.

// SuspiciousTLDs are TLDs heavily abused in phishing and malware campaigns.
var SuspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"top": true, "xyz": true, "club": true, "work": true, "click": true,
	"link": true, "surf": true, "buzz": true, "fun": true, "monster": true,
	"quest": true, "cam": true, "icu": true, "pw": true, "cc": true,
	"ws": true, "info": true, "biz": true, "su": true, "ru": true, "cn": true,
}

// TrustedTLDs are restricted-registration TLDs (education, government).
var TrustedTLDs = map[string]bool{
	"edu": true, "gov": true, "mil": true, "int": true,
	"ac.uk": true, "gov.uk": true, "edu.au": true, "gov.au": true,
}

// Shorteners is the known URL-shortener registrable-domain set, shared with
// the trust scorer.
var Shorteners = map[string]bool{
	"bit.ly": true, "bitly.com": true, "tinyurl.com": true, "t.co": true,
	"goo.gl": true, "ow.ly": true, "buff.ly": true, "is.gd": true,
	"v.gd": true, "rb.gy": true, "cutt.ly": true, "shorturl.at": true,
	"tiny.cc": true, "lnkd.in": true, "amzn.to": true, "rebrand.ly": true,
	"short.io": true,
}

// PhishingKeywords are credential-bait words counted across the whole URL.
var PhishingKeywords = []string{
	"login", "signin", "verify", "verification", "confirm", "account",
	"secure", "security", "update", "banking", "password", "credential",
	"wallet", "invoice", "payment", "billing", "suspend", "unlock",
	"webscr", "authenticate",
}

// MalwareKeywords are distribution-bait words counted across the whole URL.
var MalwareKeywords = []string{
	"crack", "keygen", "warez", "torrent", "codec", "activator",
	"loader", "patch", "serial", "nulled",
}

// SuspiciousDomainKeywords are flagged when present inside the SLD itself.
var SuspiciousDomainKeywords = []string{
	"scam", "phish", "malware", "virus", "hack", "fraud", "spoof",
}

// DangerousExtensions are directly executable or installer payloads.
var DangerousExtensions = []string{
	".exe", ".scr", ".bat", ".cmd", ".msi", ".jar", ".vbs",
	".ps1", ".apk", ".hta", ".pif",
}

// ArchiveExtensions commonly wrap dangerous payloads.
var ArchiveExtensions = []string{
	".zip", ".rar", ".7z", ".tar", ".gz", ".iso",
}

// redirectParams are query keys used for open-redirect chaining.
var redirectParams = map[string]bool{
	"url": true, "redirect": true, "redirect_uri": true, "redirect_url": true,
	"next": true, "goto": true, "dest": true, "destination": true,
	"continue": true, "return": true, "returnto": true, "return_to": true,
}

// commonBigrams is a fixed set of letter bigrams frequent in English text
// and in legitimate domain names. The fraction of a string's bigrams found
// here serves as a randomness proxy: DGA-style domains score near zero.
var commonBigrams = map[string]bool{
	// High-frequency English bigrams
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"on": true, "at": true, "en": true, "nd": true, "ti": true, "es": true,
	"or": true, "te": true, "of": true, "ed": true, "is": true, "it": true,
	"al": true, "ar": true, "st": true, "to": true, "nt": true, "ng": true,
	"se": true, "ha": true, "as": true, "ou": true, "io": true, "le": true,
	"ve": true, "co": true, "me": true, "de": true, "hi": true, "ri": true,
	"ro": true, "ic": true, "ne": true, "ea": true, "ra": true, "ce": true,
	"li": true, "ch": true, "ll": true, "be": true, "ma": true, "si": true,
	"om": true, "ur": true, "ca": true, "el": true, "ta": true, "la": true,
	"ns": true, "di": true, "fo": true, "ho": true, "pe": true, "ec": true,
	"pr": true, "no": true, "ct": true, "us": true, "ac": true, "ot": true,
	"il": true, "tr": true, "ly": true, "nc": true, "et": true, "ut": true,
	"ss": true, "so": true, "rs": true, "un": true, "lo": true, "wa": true,
	// Domain-common bigrams (brand and web vocabulary)
	"oo": true, "go": true, "gl": true, "ap": true, "pa": true, "ay": true,
	"eb": true, "bo": true, "ok": true, "am": true, "az": true, "zo": true,
	"fl": true, "ix": true, "tw": true, "wi": true, "tt": true, "gr": true,
	"ub": true, "tu": true, "yo": true, "ya": true, "we": true, "ge": true,
	"mi": true, "do": true, "po": true, "mo": true, "sh": true, "op": true,
	"bl": true, "og": true, "id": true, "ad": true, "ba": true, "nk": true,
}
