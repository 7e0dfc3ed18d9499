// MODUL: maskformer/json
// ZWECK: JSON-Serialisierung der Konfiguration mit stabiler Key-Reihenfolge
// INPUT: Config bzw. rohe config.json Bytes
// OUTPUT: config.json-kompatibles JSON
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: internal/orderedmap (Reihenfolge der Zusatzfelder)
// HINWEISE: encoding/json sortiert die Keys der eingebetteten Maps alphabetisch

package maskformer

import (
	"encoding/json"

	"github.com/maskform/maskform/internal/orderedmap"
)

// MarshalJSON serialisiert die Konfiguration mit fester Key-Reihenfolge:
// erst die Teil-Konfigurationen, dann die Skalare und abgeleiteten
// Werte, dahinter die Zusatzfelder in Einfuege-Reihenfolge und zuletzt
// model_type.
func (c Config) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()

	if c.Backbone != nil {
		om.Set("backbone_config", c.Backbone.ToMap())
	}
	if c.Decoder != nil {
		om.Set("detr_config", c.Decoder.ToMap())
	}

	om.Set("fpn_feature_size", c.FPNFeatureSize)
	om.Set("mask_feature_size", c.MaskFeatureSize)
	om.Set("init_std", c.InitStd)
	om.Set("init_xavier_std", c.InitXavierStd)
	om.Set("cross_entropy_weight", c.CrossEntropyWeight)
	om.Set("dice_weight", c.DiceWeight)
	om.Set("mask_weight", c.MaskWeight)
	om.Set("use_auxilary_loss", c.UseAuxiliaryLoss)
	om.Set("no_object_weight", c.NoObjectWeight)
	om.Set("num_attention_heads", c.NumAttentionHeads())
	om.Set("num_hidden_layers", c.NumHiddenLayers())
	om.Set("num_labels", c.NumLabels)

	if c.extras != nil {
		for key, val := range c.extras.All() {
			if reservedKey(key) {
				continue
			}
			om.Set(key, val)
		}
	}
	om.Set("model_type", modelType)

	return json.Marshal(om)
}

// UnmarshalJSON dekodiert eine config.json. Die Dokument-Reihenfolge
// unbekannter Keys bleibt fuer den Round-Trip erhalten.
func (c *Config) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, om); err != nil {
		return err
	}

	m := make(map[string]any, om.Len())
	order := make([]string, 0, om.Len())
	for key, val := range om.All() {
		m[key] = val
		order = append(order, key)
	}

	decoded, err := fromMapOrdered(m, order)
	if err != nil {
		return err
	}

	*c = *decoded
	return nil
}

func (c *Config) String() string {
	bts, _ := json.Marshal(c)
	return string(bts)
}
