// Package parser reads policy and feature toggle definitions from YAML.
//
// A definition file carries a format version plus any mix of policies
// and feature toggles:
//
//	verdict_version: "1"
//	policies:
//	  - id: fraud-listing
//	    name: Fraudulent listing detection
//	    status: draft
//	    rules:
//	      - id: low-trust
//	        field: seller.trust_score
//	        operator: less_than
//	        value: 20
//	        active: true
//	features:
//	  - key: instant-payout
//	    rollout_strategy: percentage
//	    rollout_percentage: 25
//
// The parser enforces file size and condition nesting limits and reports
// syntax failures with the source file attached. Semantic checks belong
// to the validator, not the parser.
package parser
