package features

// FeatureNames is the ordered feature manifest shared between the extractor
// and the trained model. The order matches the training pipeline's
// feature_names.json and must never be reordered without retraining; the
// predictor refuses to start on any divergence.
var FeatureNames = []string{
	// Lengths
	"url_length",
	"domain_length",
	"path_length",
	"query_length",
	"fragment_length",
	"subdomain_length",
	"hostname_length",
	// Punctuation counts
	"num_dots",
	"num_hyphens",
	"num_underscores",
	"num_slashes",
	"num_question_marks",
	"num_equal_signs",
	"num_at_symbols",
	"num_ampersands",
	"num_percent_signs",
	"num_hash_signs",
	"num_semicolons",
	"num_plus_signs",
	"num_colons",
	"num_commas",
	"num_tildes",
	"num_asterisks",
	"num_dollar_signs",
	"num_spaces",
	"num_digits",
	"num_letters",
	"num_params",
	"path_depth",
	"subdomain_count",
	// Ratios
	"digit_ratio",
	"letter_ratio",
	"special_char_ratio",
	"digit_letter_ratio",
	"domain_digit_ratio",
	"domain_special_ratio",
	"vowel_consonant_ratio",
	// Entropies
	"url_entropy",
	"domain_entropy",
	"path_entropy",
	"query_entropy",
	"subdomain_entropy",
	// Structural booleans
	"is_https",
	"is_http",
	"has_ip_address",
	"has_ipv6_address",
	"has_port",
	"has_at_symbol",
	"has_double_slash_in_path",
	"has_hex_encoding",
	"has_punycode",
	"has_data_uri",
	"has_javascript",
	"has_mailto",
	"has_file_scheme",
	"has_fragment",
	"has_query",
	"has_www_subdomain",
	"has_digits_in_domain",
	"has_hyphen_in_domain",
	"has_underscore_in_domain",
	"has_repeated_digits",
	"has_long_subdomain",
	// TLD classification
	"tld_is_com",
	"tld_is_org",
	"tld_is_net",
	"is_country_tld",
	"is_suspicious_tld",
	"is_trusted_tld",
	"is_url_shortener",
	// Keyword dictionaries
	"brand_keyword_count",
	"phishing_keyword_count",
	"malware_keyword_count",
	"suspicious_word_count",
	"has_dangerous_ext",
	"has_exe",
	"has_archive_ext",
	"has_double_ext",
	"has_redirect_param",
	"has_embedded_url",
	"num_encoded_chars",
	// Token statistics
	"longest_token_length",
	"avg_token_length",
	"max_consecutive_digits",
	"max_consecutive_consonants",
	// Bigram commonality (randomness proxy)
	"url_bigram_score",
	"domain_bigram_score",
	"sld_bigram_score",
	// Brand placement
	"brand_not_registered",
	"has_brand_in_subdomain",
	// Homograph signals
	"homograph_has_mixed_scripts",
	"homograph_confusable_chars",
	"homograph_min_brand_distance",
	"homograph_has_char_sub",
	"homograph_is_exact_brand",
}
